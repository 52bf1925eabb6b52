package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/apperr"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/testutil"
)

func setupLedger(t *testing.T) (*LedgerService, *repository.Repositories, *entity.Company, *entity.Item) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewLedgerService(repos.Ledger, repos.Item, repos.Company, db, nil, false)

	company := testutil.SeedCompany(t, db, "Acme Manufacturing", false)
	item := testutil.SeedItem(t, db, company.ID, "STEEL-ROD", "Steel Rod", entity.ItemTypeRawMaterial)
	return svc, repos, company, item
}

func TestRecordMovementBalance(t *testing.T) {
	svc, repos, company, item := setupLedger(t)
	ctx := context.Background()

	deltas := []string{"100", "-30", "7.5", "-0.5"}
	for _, d := range deltas {
		_, err := svc.RecordMovement(ctx, RecordMovementRequest{
			ItemID:      item.ID,
			QtyDelta:    decimal.RequireFromString(d),
			VoucherType: entity.VoucherManualAdjustment,
		}, company.ID, "user-1")
		if err != nil {
			t.Fatalf("RecordMovement(%s) failed: %v", d, err)
		}
	}

	balance, err := svc.CurrentStock(ctx, item.ID, company.ID)
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if balance.String() != "77" {
		t.Errorf("balance = %s, want 77", balance.String())
	}

	// materialized column tracks the ledger sum
	got, err := repos.Item.GetByID(item.ID, company.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.CurrentStock.Equal(balance) {
		t.Errorf("materialized stock %s diverged from ledger balance %s",
			got.CurrentStock.String(), balance.String())
	}
}

func TestRecordMovementZeroDelta(t *testing.T) {
	svc, _, company, item := setupLedger(t)

	_, err := svc.RecordMovement(context.Background(), RecordMovementRequest{
		ItemID:      item.ID,
		QtyDelta:    decimal.Zero,
		VoucherType: entity.VoucherManualAdjustment,
	}, company.ID, "user-1")
	if !apperr.Is(err, apperr.CodeInvalidQuantity) {
		t.Errorf("expected INVALID_QUANTITY, got %v", err)
	}
}

func TestRecordMovementInsufficientStock(t *testing.T) {
	svc, repos, company, item := setupLedger(t)
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, RecordMovementRequest{
		ItemID:      item.ID,
		QtyDelta:    decimal.NewFromInt(-5),
		VoucherType: entity.VoucherManualAdjustment,
	}, company.ID, "user-1")
	if !apperr.Is(err, apperr.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	// rejected movement leaves no ledger trace
	entries, total, err := repos.Ledger.List(repository.LedgerListParams{
		CompanyID: company.ID, ItemID: item.ID, Page: 1, Size: 10,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 0 || len(entries) != 0 {
		t.Errorf("expected empty ledger after rejection, got %d entries", total)
	}
}

func TestRecordMovementNegativeAllowedTenant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewLedgerService(repos.Ledger, repos.Item, repos.Company, db, nil, false)

	company := testutil.SeedCompany(t, db, "Loose Corp", true)
	item := testutil.SeedItem(t, db, company.ID, "SCREWS", "Screws", entity.ItemTypeRawMaterial)
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, RecordMovementRequest{
		ItemID:      item.ID,
		QtyDelta:    decimal.NewFromInt(-5),
		VoucherType: entity.VoucherManualAdjustment,
	}, company.ID, "user-1")
	if err != nil {
		t.Fatalf("negative-stock tenant should accept the movement: %v", err)
	}

	balance, err := svc.CurrentStock(ctx, item.ID, company.ID)
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if balance.String() != "-5" {
		t.Errorf("balance = %s, want -5", balance.String())
	}
}

func TestRecordMovementBackorderVoucher(t *testing.T) {
	svc, _, company, item := setupLedger(t)
	ctx := context.Background()

	// backorder consumption may drive stock negative even for strict tenants
	_, err := svc.RecordMovement(ctx, RecordMovementRequest{
		ItemID:      item.ID,
		QtyDelta:    decimal.NewFromInt(-3),
		VoucherType: entity.VoucherBackorderConsumption,
	}, company.ID, "user-1")
	if err != nil {
		t.Fatalf("backorder consumption rejected: %v", err)
	}

	balance, _ := svc.CurrentStock(ctx, item.ID, company.ID)
	if balance.String() != "-3" {
		t.Errorf("balance = %s, want -3", balance.String())
	}
}

func TestRecordMovementUnknownItem(t *testing.T) {
	svc, _, company, _ := setupLedger(t)

	_, err := svc.RecordMovement(context.Background(), RecordMovementRequest{
		ItemID:      "22222222-2222-2222-2222-222222222222",
		QtyDelta:    decimal.NewFromInt(1),
		VoucherType: entity.VoucherManualAdjustment,
	}, company.ID, "user-1")
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

// Concurrent consumptions against the same item must serialize on the row
// lock: with stock 10 and ten workers each taking 3, exactly three succeed.
func TestConcurrentConsumption(t *testing.T) {
	svc, _, company, item := setupLedger(t)
	ctx := context.Background()

	_, err := svc.RecordMovement(ctx, RecordMovementRequest{
		ItemID:      item.ID,
		QtyDelta:    decimal.NewFromInt(10),
		VoucherType: entity.VoucherManualAdjustment,
	}, company.ID, "seeder")
	if err != nil {
		t.Fatalf("seed movement failed: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(ctx, RecordMovementRequest{
				ItemID:      item.ID,
				QtyDelta:    decimal.NewFromInt(-3),
				VoucherType: entity.VoucherManufacturingConsumption,
			}, company.ID, "worker")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperr.Is(err, apperr.CodeInsufficientStock):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 3 || rejected != 7 {
		t.Errorf("succeeded=%d rejected=%d, want 3/7", succeeded, rejected)
	}

	balance, err := svc.CurrentStock(ctx, item.ID, company.ID)
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if balance.String() != "1" {
		t.Errorf("final balance = %s, want 1", balance.String())
	}
}
