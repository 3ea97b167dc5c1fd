// Package integration holds stub adapters for the external systems the
// procurement flow touches (SAP ERP, GeM marketplace, CPPP portal). They
// return synthetic data; production deployments replace them with real API
// clients behind the same methods.
package integration

import (
	"fmt"
	"time"
)

// SAPAdapter stubs the SAP ERP integration.
type SAPAdapter struct{}

// NewSAPAdapter creates a new SAPAdapter.
func NewSAPAdapter() *SAPAdapter { return &SAPAdapter{} }

// SyncPurchaseRequest pushes a purchase request to SAP.
func (a *SAPAdapter) SyncPurchaseRequest(prID string, prData map[string]any) map[string]any {
	return map[string]any{
		"status":            "SUCCESS",
		"sapDocumentNumber": fmt.Sprintf("SAP-%d", time.Now().UnixMilli()),
		"prId":              prID,
		"message":           "PR synced to SAP successfully (stub)",
	}
}

// GetPOStatus retrieves a purchase order status from SAP.
func (a *SAPAdapter) GetPOStatus(poNumber string) map[string]any {
	return map[string]any{
		"poNumber": poNumber,
		"status":   "IN_PROGRESS",
		"vendor":   "Vendor XYZ",
		"message":  "PO status retrieved from SAP (stub)",
	}
}

// CreatePurchaseOrder creates a purchase order in SAP for an approved request.
func (a *SAPAdapter) CreatePurchaseOrder(prID, vendorCode string) map[string]any {
	return map[string]any{
		"status":     "SUCCESS",
		"poNumber":   fmt.Sprintf("PO-%d", time.Now().UnixMilli()),
		"prId":       prID,
		"vendorCode": vendorCode,
		"message":    "PO created in SAP (stub)",
	}
}

// GeMAdapter stubs the Government e-Marketplace integration.
type GeMAdapter struct{}

// NewGeMAdapter creates a new GeMAdapter.
func NewGeMAdapter() *GeMAdapter { return &GeMAdapter{} }

// CheckSupplierRegistration verifies a supplier on GeM.
func (a *GeMAdapter) CheckSupplierRegistration(supplierName string) map[string]any {
	return map[string]any{
		"supplierName":  supplierName,
		"registered":    true,
		"gemSupplierId": fmt.Sprintf("GEM-%s", supplierName),
		"validUpto":     "2027-12-31",
		"message":       "Supplier verified on GeM (stub)",
	}
}

// PublishBid publishes a bid for a purchase request on the GeM portal.
func (a *GeMAdapter) PublishBid(prID string, bidDetails map[string]any) map[string]any {
	return map[string]any{
		"status":      "PUBLISHED",
		"bidId":       fmt.Sprintf("BID-%d", time.Now().UnixMilli()),
		"prId":        prID,
		"publishedOn": "GeM Portal",
		"message":     "Bid published on GeM (stub)",
	}
}

// CPPPAdapter stubs the Central Public Procurement Portal integration.
type CPPPAdapter struct{}

// NewCPPPAdapter creates a new CPPPAdapter.
func NewCPPPAdapter() *CPPPAdapter { return &CPPPAdapter{} }

// SubmitContract submits a contract for a purchase request to CPPP.
func (a *CPPPAdapter) SubmitContract(prID, contractDetails string) map[string]any {
	return map[string]any{
		"status":        "SUBMITTED",
		"contractId":    fmt.Sprintf("CPPP-CONTRACT-%d", time.Now().UnixMilli()),
		"prId":          prID,
		"submittedDate": time.Now().Format(time.RFC3339),
		"message":       "Contract submitted to CPPP (stub)",
	}
}

// CheckCompliance runs a CPPP compliance check on a contract.
func (a *CPPPAdapter) CheckCompliance(contractID string) map[string]any {
	return map[string]any{
		"contractId":      contractID,
		"compliant":       true,
		"complianceScore": 95,
		"issues":          []string{},
		"message":         "Compliance check completed via CPPP (stub)",
	}
}

// GetGuidelinesForCategory returns CPPP procurement guidelines for a category.
func (a *CPPPAdapter) GetGuidelinesForCategory(category string) map[string]any {
	return map[string]any{
		"category":           category,
		"guidelines":         "CPPP standard procurement guidelines apply",
		"minimumBidders":     3,
		"mandatoryDocuments": []string{"Technical specs", "Financial bid", "Compliance certificate"},
		"message":            "Guidelines retrieved from CPPP (stub)",
	}
}
