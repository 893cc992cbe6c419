package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ziplink/internal/chain"
	"ziplink/internal/server/models"
	"ziplink/internal/server/services"
)

type createLinkRequest struct {
	Amount         float64 `json:"amount" binding:"required"`
	Memo           string  `json:"memo"`
	Title          string  `json:"title"`
	ExpiresInHours int     `json:"expiresInHours"`
	CreatorEmail   string  `json:"creatorEmail"`
	FundingSecret  string  `json:"fundingSecret"`
}

type claimView struct {
	ClaimerAddress    string    `json:"claimerAddress"`
	ClaimerName       string    `json:"claimerName,omitempty"`
	AmountTransferred uint64    `json:"amountTransferred"`
	TxSignature       string    `json:"txSignature"`
	CreatedAt         time.Time `json:"createdAt"`
}

type linkView struct {
	LinkID          string     `json:"linkId"`
	URL             string     `json:"url"`
	EscrowPublicKey string     `json:"escrowPublicKey"`
	FaceAmount      uint64     `json:"faceAmount"`
	FaceAmountSol   float64    `json:"faceAmountSol"`
	Status          string     `json:"status"`
	Memo            string     `json:"memo,omitempty"`
	Title           string     `json:"title,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	ClaimedAt       *time.Time `json:"claimedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func toLinkView(l *models.Link) linkView {
	return linkView{
		LinkID:          l.LinkID,
		URL:             l.URL,
		EscrowPublicKey: l.EscrowPublicKey,
		FaceAmount:      l.FaceAmount,
		FaceAmountSol:   chain.LamportsToSol(l.FaceAmount),
		Status:          string(l.Status),
		Memo:            l.Memo,
		Title:           l.Title,
		ExpiresAt:       l.ExpiresAt,
		ClaimedAt:       l.ClaimedAt,
		CreatedAt:       l.CreatedAt,
	}
}

func (h *Handler) createLink(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failInput(c, err)
		return
	}

	res, err := h.links.Create(c.Request.Context(), services.CreateLinkParams{
		AmountSol:      req.Amount,
		Memo:           req.Memo,
		Title:          req.Title,
		ExpiresInHours: req.ExpiresInHours,
		CreatorEmail:   req.CreatorEmail,
		FundingSecret:  req.FundingSecret,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"linkId":          res.LinkID,
		"url":             res.URL,
		"escrowPublicKey": res.EscrowPublicKey,
		"status":          string(res.Status),
		"expiresAt":       res.ExpiresAt,
	})
}

func (h *Handler) getLink(c *gin.Context) {
	details, err := h.links.Get(c.Request.Context(), c.Param("linkId"))
	if err != nil {
		fail(c, err)
		return
	}

	claimViews := make([]claimView, 0, len(details.Claims))
	for _, claim := range details.Claims {
		claimViews = append(claimViews, claimView{
			ClaimerAddress:    claim.ClaimerAddress,
			ClaimerName:       claim.ClaimerName,
			AmountTransferred: claim.AmountTransferred,
			TxSignature:       claim.TxSignature,
			CreatedAt:         claim.CreatedAt,
		})
	}

	view := toLinkView(details.Link)
	c.JSON(http.StatusOK, gin.H{
		"link":              view,
		"currentBalance":    details.CurrentBalance,
		"currentBalanceSol": chain.LamportsToSol(details.CurrentBalance),
		"claims":            claimViews,
	})
}

func (h *Handler) cancelLink(c *gin.Context) {
	if err := h.links.Cancel(c.Request.Context(), c.Param("linkId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(models.StatusCancelled)})
}

type claimRequest struct {
	LinkID           string `json:"linkId" binding:"required"`
	RecipientAddress string `json:"recipientAddress" binding:"required"`
	ClaimerEmail     string `json:"claimerEmail"`
	ClaimerName      string `json:"claimerName"`
}

func (h *Handler) claim(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failInput(c, err)
		return
	}

	res, err := h.settle.Claim(c.Request.Context(),
		req.LinkID, req.RecipientAddress, req.ClaimerEmail, req.ClaimerName)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"txSignature":          res.TxSignature,
		"amountTransferred":    res.AmountTransferred,
		"amountTransferredSol": chain.LamportsToSol(res.AmountTransferred),
	})
}
