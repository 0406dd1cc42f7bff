package models

import (
	"context"
	"fmt"
	"time"

	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/utils"
)

const (
	CheckSaleTotal       = "SALE_TOTAL"
	CheckPurchaseTotal   = "PURCHASE_TOTAL"
	CheckCustomerBalance = "CUSTOMER_BALANCE"
	CheckLineMovement    = "LINE_MOVEMENT"

	latestReconciliationKey = "reconcile:latest"
)

type ReconciliationMismatch struct {
	CheckType  string `json:"check_type"`
	EntityType string `json:"entity_type"`
	EntityId   int    `json:"entity_id"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
}

type ReconciliationResult struct {
	CorrelationId string                    `json:"correlation_id"`
	CheckedAt     time.Time                 `json:"checked_at"`
	Mismatches    []*ReconciliationMismatch `json:"mismatches"`
}

func (r *ReconciliationResult) OK() bool {
	return len(r.Mismatches) == 0
}

// RunBalanceReconciliation recomputes document totals and customer balances
// from their sources and reports every row that disagrees. It never writes.
func RunBalanceReconciliation(ctx context.Context) (*ReconciliationResult, error) {
	db := config.GetDB()
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	result := &ReconciliationResult{
		CorrelationId: correlationIdFromContextOrNew(ctx),
		CheckedAt:     time.Now().UTC(),
		Mismatches:    make([]*ReconciliationMismatch, 0),
	}

	type mismatchRow struct {
		Id       int
		Expected string
		Actual   string
	}
	checks := []struct {
		checkType  string
		entityType string
		query      string
	}{
		{CheckSaleTotal, "Sale", `
			SELECT s.id,
				CAST(COALESCE(SUM(si.total_price), 0) AS CHAR) AS expected,
				CAST(s.total_amount AS CHAR) AS actual
			FROM sales s
			LEFT JOIN sale_items si ON si.sale_id = s.id
			GROUP BY s.id, s.total_amount
			HAVING ROUND(s.total_amount, 2) <> ROUND(COALESCE(SUM(si.total_price), 0), 2)
		`},
		{CheckPurchaseTotal, "Purchase", `
			SELECT p.id,
				CAST(COALESCE(SUM(pi.total_cost), 0) AS CHAR) AS expected,
				CAST(p.total_amount AS CHAR) AS actual
			FROM purchases p
			LEFT JOIN purchase_items pi ON pi.purchase_id = p.id
			GROUP BY p.id, p.total_amount
			HAVING ROUND(p.total_amount, 2) <> ROUND(COALESCE(SUM(pi.total_cost), 0), 2)
		`},
		{CheckCustomerBalance, "Customer", `
			SELECT c.id,
				CAST(COALESCE(sh.shortfall, 0) - COALESCE(pm.paid, 0) AS CHAR) AS expected,
				CAST(c.balance AS CHAR) AS actual
			FROM customers c
			LEFT JOIN (
				SELECT customer_id, SUM(GREATEST(total_amount - paid_amount, 0)) AS shortfall
				FROM sales WHERE customer_id IS NOT NULL GROUP BY customer_id
			) sh ON sh.customer_id = c.id
			LEFT JOIN (
				SELECT customer_id, SUM(amount) AS paid FROM payments GROUP BY customer_id
			) pm ON pm.customer_id = c.id
			WHERE ROUND(c.balance, 2) <> ROUND(COALESCE(sh.shortfall, 0) - COALESCE(pm.paid, 0), 2)
		`},
		{CheckLineMovement, "SaleItem", `
			SELECT si.id, CAST(-si.quantity AS CHAR) AS expected, CAST(COALESCE(SUM(sm.quantity), 0) AS CHAR) AS actual
			FROM sale_items si
			LEFT JOIN stock_movements sm ON sm.reference_type = '` + MovementReferenceSaleItem + `' AND sm.reference_id = si.id
			GROUP BY si.id, si.quantity
			HAVING COALESCE(SUM(sm.quantity), 0) <> -si.quantity
		`},
		{CheckLineMovement, "PurchaseItem", `
			SELECT pi.id, CAST(pi.quantity AS CHAR) AS expected, CAST(COALESCE(SUM(sm.quantity), 0) AS CHAR) AS actual
			FROM purchase_items pi
			LEFT JOIN stock_movements sm ON sm.reference_type = '` + MovementReferencePurchaseItem + `' AND sm.reference_id = pi.id
			GROUP BY pi.id, pi.quantity
			HAVING COALESCE(SUM(sm.quantity), 0) <> pi.quantity
		`},
	}

	for _, check := range checks {
		var rows []mismatchRow
		if err := db.WithContext(ctx).Raw(check.query).Scan(&rows).Error; err != nil {
			config.LogError(config.GetLogger(), "Reconciliation", "RunBalanceReconciliation", check.checkType, nil, err)
			return result, err
		}
		for _, row := range rows {
			result.Mismatches = append(result.Mismatches, &ReconciliationMismatch{
				CheckType:  check.checkType,
				EntityType: check.entityType,
				EntityId:   row.Id,
				Expected:   row.Expected,
				Actual:     row.Actual,
			})
		}
	}

	config.LogInfo(config.GetLogger(), "Reconciliation", "RunBalanceReconciliation", "balance reconciliation completed", map[string]interface{}{
		"correlation_id": result.CorrelationId,
		"mismatches":     len(result.Mismatches),
		"actor":          utils.GetActorFromContext(ctx, "system"),
	})
	if err := config.SetRedisObject(ctx, latestReconciliationKey, result, 0); err != nil {
		config.LogError(config.GetLogger(), "Reconciliation", "RunBalanceReconciliation", "SetRedisObject", result.CorrelationId, err)
	}
	return result, nil
}

// LatestReconciliation returns the last stored run. Without redis there is none.
func LatestReconciliation(ctx context.Context) (*ReconciliationResult, error) {
	var result ReconciliationResult
	found, err := config.GetRedisObject(ctx, latestReconciliationKey, &result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, utils.NewNotFoundError("Reconciliation", "latest")
	}
	return &result, nil
}
