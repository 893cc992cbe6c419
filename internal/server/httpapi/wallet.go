package httpapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ziplink/internal/common"
)

type connectRequest struct {
	IdentityToken string `json:"identityToken" binding:"required"`
}

type signRequest struct {
	// Payload is base64-encoded raw bytes to sign.
	Payload string `json:"payload" binding:"required"`
}

// sessionToken pulls the bridge session token from the Authorization header.
func sessionToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", common.ErrorUnauthorized
	}
	return token, nil
}

func (h *Handler) walletConnect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failInput(c, err)
		return
	}

	res, err := h.bridge.Connect(c.Request.Context(), req.IdentityToken)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"publicKey":    res.PublicKey,
		"sessionToken": res.SessionToken,
	})
}

func (h *Handler) walletSignTransaction(c *gin.Context) {
	h.walletSign(c, h.bridge.SignTransaction)
}

func (h *Handler) walletSignMessage(c *gin.Context) {
	h.walletSign(c, h.bridge.SignMessage)
}

func (h *Handler) walletSign(c *gin.Context, sign func(ctx context.Context, token string, payload []byte) ([]byte, error)) {
	token, err := sessionToken(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req signRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failInput(c, err)
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		failInput(c, fmt.Errorf("payload must be base64: %w", err))
		return
	}

	signature, err := sign(c.Request.Context(), token, payload)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"signature": base64.StdEncoding.EncodeToString(signature),
	})
}

func (h *Handler) walletDisconnect(c *gin.Context) {
	token, err := sessionToken(c)
	if err != nil {
		fail(c, err)
		return
	}

	h.bridge.Disconnect(c.Request.Context(), token)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
