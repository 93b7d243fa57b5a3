// internal/handlers/verification.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sealtrace/sealtrace-backend/internal/models"
	"github.com/sealtrace/sealtrace-backend/internal/securetag"
	"github.com/sealtrace/sealtrace-backend/internal/services"
	"github.com/sealtrace/sealtrace-backend/internal/utils"
)

type VerificationHandler struct {
	verificationService *services.VerificationService
}

func NewVerificationHandler(verificationService *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
	}
}

// POST /verify/qr
func (h *VerificationHandler) VerifyQR(c *gin.Context) {
	var req services.VerifyQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.verificationService.VerifyQR(&req)
	if err != nil {
		h.writeVerifyError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /verify/nfc
func (h *VerificationHandler) VerifyNFC(c *gin.Context) {
	var req services.VerifyNFCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.verificationService.VerifyNFC(&req)
	if err != nil {
		h.writeVerifyError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// writeVerifyError maps the terminal counterfeit states onto HTTP responses.
// These are not generic errors: the scanning client still needs a definite
// "counterfeit" verdict to show the consumer.
func (h *VerificationHandler) writeVerifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, securetag.ErrMalformedCode):
		c.JSON(http.StatusBadRequest, services.VerificationResult{
			Result:  models.OutcomeCounterfeit,
			Message: "The scanned code is not a valid product code",
		})
	case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrInvalidTag):
		c.JSON(http.StatusNotFound, services.VerificationResult{
			Result:  models.OutcomeCounterfeit,
			Message: "No matching product was found for this code",
		})
	case errors.Is(err, services.ErrCredentialMismatch):
		c.JSON(http.StatusBadRequest, services.VerificationResult{
			Result:  models.OutcomeCounterfeit,
			Message: "The product credentials do not match our records",
		})
	default:
		utils.InternalErrorResponse(c, "Verification could not be completed")
	}
}
