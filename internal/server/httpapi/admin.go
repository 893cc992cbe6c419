package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) adminListLinks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	res, err := h.links.List(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]linkView, 0, len(res.Links))
	for _, link := range res.Links {
		views = append(views, toLinkView(link))
	}
	c.JSON(http.StatusOK, gin.H{
		"links": views,
		"total": res.Total,
		"page":  page,
		"limit": limit,
	})
}

func (h *Handler) adminAnalytics(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		failInput(c, err)
		return
	}

	summary, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	daily, err := h.analytics.Range(c.Request.Context(), days)
	if err != nil {
		fail(c, err)
		return
	}

	recentLinks := make([]linkView, 0, len(summary.RecentLinks))
	for _, link := range summary.RecentLinks {
		recentLinks = append(recentLinks, toLinkView(link))
	}
	recentClaims := make([]claimView, 0, len(summary.RecentClaims))
	for _, claim := range summary.RecentClaims {
		recentClaims = append(recentClaims, claimView{
			ClaimerAddress:    claim.ClaimerAddress,
			ClaimerName:       claim.ClaimerName,
			AmountTransferred: claim.AmountTransferred,
			TxSignature:       claim.TxSignature,
			CreatedAt:         claim.CreatedAt,
		})
	}

	type dayView struct {
		Date               string `json:"date"`
		LinksCreated       int64  `json:"linksCreated"`
		LinksClaimed       int64  `json:"linksClaimed"`
		TotalAmountCreated uint64 `json:"totalAmountCreated"`
		UniqueUsers        int64  `json:"uniqueUsers"`
	}
	dailyViews := make([]dayView, 0, len(daily))
	for _, d := range daily {
		dailyViews = append(dailyViews, dayView{
			Date:               d.Date.Format("2006-01-02"),
			LinksCreated:       d.LinksCreated,
			LinksClaimed:       d.LinksClaimed,
			TotalAmountCreated: d.TotalAmountCreated,
			UniqueUsers:        d.UniqueUsers,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"totalLinks":   summary.TotalLinks,
		"activeLinks":  summary.ActiveLinks,
		"claimedLinks": summary.ClaimedLinks,
		"claimRate":    summary.ClaimRate,
		"recentLinks":  recentLinks,
		"recentClaims": recentClaims,
		"daily":        dailyViews,
	})
}

func (h *Handler) adminReconcile(c *gin.Context) {
	res, err := h.settle.Reconcile(c.Request.Context(), c.Param("linkId"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":           string(res.Outcome),
		"txSignature":       res.TxSignature,
		"amountTransferred": res.AmountTransferred,
	})
}
