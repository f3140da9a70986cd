package inventory

import (
	"strings"

	"github.com/jhoicas/bookstore-inventory/internal/domain"
)

// Motivos de negocio aceptados por el ledger de stock.
const (
	ReasonCountDiscrepancy  = "Stock Count Discrepancy"
	ReasonDamaged           = "Damaged/Defective"
	ReasonLost              = "Lost/Missing"
	ReasonTheft             = "Theft/Shrinkage"
	ReasonInventoryAdjust   = "Inventory Adjustment"
	ReasonCustomerReturn    = "Return from Customer"
	ReasonPhysicalStocktake = "Physical Stocktake"
	ReasonSystemCorrection  = "System Correction"
	ReasonExpiredObsolete   = "Expired/Obsolete"
	ReasonOtherPrefix       = "Other:"
)

// AdjustmentReasons vocabulario fijo en el orden en que lo muestra la UI.
var AdjustmentReasons = []string{
	ReasonCountDiscrepancy,
	ReasonDamaged,
	ReasonLost,
	ReasonTheft,
	ReasonInventoryAdjust,
	ReasonCustomerReturn,
	ReasonPhysicalStocktake,
	ReasonSystemCorrection,
	ReasonExpiredObsolete,
}

// ValidateReason acepta un motivo del vocabulario o "Other: <texto>" con texto no vacío.
func ValidateReason(reason string) error {
	for _, r := range AdjustmentReasons {
		if reason == r {
			return nil
		}
	}
	if rest, ok := strings.CutPrefix(reason, ReasonOtherPrefix); ok && strings.TrimSpace(rest) != "" {
		return nil
	}
	return domain.ErrInvalidReason
}
