package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/apperr"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/testutil"
)

func TestResolveBOM(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	resolver := NewBOMResolver(repos.BOM, repos.Item, repos.WorkCenter, db)

	company := testutil.SeedCompany(t, db, "Acme Manufacturing", false)
	table := testutil.SeedItem(t, db, company.ID, "TABLE-01", "Dining Table", entity.ItemTypeFinishedGood)
	rod := testutil.SeedItem(t, db, company.ID, "STEEL-ROD", "Steel Rod", entity.ItemTypeRawMaterial)
	screws := testutil.SeedItem(t, db, company.ID, "SCREWS", "Screws", entity.ItemTypeRawMaterial)
	cutting := testutil.SeedWorkCenter(t, db, company.ID, "Cutting")
	assembly := testutil.SeedWorkCenter(t, db, company.ID, "Assembly")

	bom := testutil.SeedBOM(t, db, company.ID, table.ID,
		[]entity.BOMComponent{
			{ItemID: rod.ID, QtyPerUnit: decimal.NewFromInt(2)},
			{ItemID: screws.ID, QtyPerUnit: decimal.NewFromInt(4)},
		},
		[]entity.BOMOperation{
			{WorkCenterID: assembly.ID, Name: "Assemble", DurationMinutes: 60, Sequence: 2},
			{WorkCenterID: cutting.ID, Name: "Cut", DurationMinutes: 30, Sequence: 1},
		},
	)

	resolved, err := resolver.Resolve(bom.ID, company.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(resolved.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(resolved.Components))
	}
	if len(resolved.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(resolved.Operations))
	}
	// operations come back ordered by sequence
	if resolved.Operations[0].Name != "Cut" || resolved.Operations[1].Name != "Assemble" {
		t.Errorf("operations out of order: %s, %s", resolved.Operations[0].Name, resolved.Operations[1].Name)
	}
	if resolved.Operations[0].WorkCenter.ID != cutting.ID {
		t.Error("first operation should run at the Cutting work center")
	}
}

func TestResolveBOMNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	resolver := NewBOMResolver(repos.BOM, repos.Item, repos.WorkCenter, db)

	company := testutil.SeedCompany(t, db, "Acme Manufacturing", false)

	_, err := resolver.Resolve("11111111-1111-1111-1111-111111111111", company.ID)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolveBOMCrossTenant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	resolver := NewBOMResolver(repos.BOM, repos.Item, repos.WorkCenter, db)

	company := testutil.SeedCompany(t, db, "Acme Manufacturing", false)
	other := testutil.SeedCompany(t, db, "Rival Corp", false)

	table := testutil.SeedItem(t, db, company.ID, "TABLE-01", "Dining Table", entity.ItemTypeFinishedGood)
	foreignRod := testutil.SeedItem(t, db, other.ID, "STEEL-ROD", "Steel Rod", entity.ItemTypeRawMaterial)

	bom := testutil.SeedBOM(t, db, company.ID, table.ID,
		[]entity.BOMComponent{{ItemID: foreignRod.ID, QtyPerUnit: decimal.NewFromInt(2)}},
		nil,
	)

	// component belongs to another tenant
	_, err := resolver.Resolve(bom.ID, company.ID)
	if !apperr.Is(err, apperr.CodeInvalidReference) {
		t.Errorf("expected INVALID_REFERENCE, got %v", err)
	}

	// same goes for resolving a foreign BOM directly
	_, err = resolver.Resolve(bom.ID, other.ID)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for foreign BOM, got %v", err)
	}
}

func TestResolveBOMSelfReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	resolver := NewBOMResolver(repos.BOM, repos.Item, repos.WorkCenter, db)

	company := testutil.SeedCompany(t, db, "Acme Manufacturing", false)
	table := testutil.SeedItem(t, db, company.ID, "TABLE-01", "Dining Table", entity.ItemTypeFinishedGood)

	bom := testutil.SeedBOM(t, db, company.ID, table.ID,
		[]entity.BOMComponent{{ItemID: table.ID, QtyPerUnit: decimal.NewFromInt(1)}},
		nil,
	)

	_, err := resolver.Resolve(bom.ID, company.ID)
	if !apperr.Is(err, apperr.CodeCyclicBOM) {
		t.Errorf("expected CYCLIC_BOM, got %v", err)
	}
}

func TestResolveBOMTransitiveCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	resolver := NewBOMResolver(repos.BOM, repos.Item, repos.WorkCenter, db)

	company := testutil.SeedCompany(t, db, "Acme Manufacturing", false)
	a := testutil.SeedItem(t, db, company.ID, "ITEM-A", "Item A", entity.ItemTypeSemiFinished)
	b := testutil.SeedItem(t, db, company.ID, "ITEM-B", "Item B", entity.ItemTypeSemiFinished)
	c := testutil.SeedItem(t, db, company.ID, "ITEM-C", "Item C", entity.ItemTypeSemiFinished)

	// A -> B -> C -> A
	bomA := testutil.SeedBOM(t, db, company.ID, a.ID,
		[]entity.BOMComponent{{ItemID: b.ID, QtyPerUnit: decimal.NewFromInt(1)}}, nil)
	testutil.SeedBOM(t, db, company.ID, b.ID,
		[]entity.BOMComponent{{ItemID: c.ID, QtyPerUnit: decimal.NewFromInt(1)}}, nil)
	testutil.SeedBOM(t, db, company.ID, c.ID,
		[]entity.BOMComponent{{ItemID: a.ID, QtyPerUnit: decimal.NewFromInt(1)}}, nil)

	_, err := resolver.Resolve(bomA.ID, company.ID)
	if !apperr.Is(err, apperr.CodeCyclicBOM) {
		t.Errorf("expected CYCLIC_BOM, got %v", err)
	}
}

func TestResolveBOMMultiLevelNoCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	resolver := NewBOMResolver(repos.BOM, repos.Item, repos.WorkCenter, db)

	company := testutil.SeedCompany(t, db, "Acme Manufacturing", false)
	table := testutil.SeedItem(t, db, company.ID, "TABLE-01", "Dining Table", entity.ItemTypeFinishedGood)
	leg := testutil.SeedItem(t, db, company.ID, "LEG-01", "Table Leg", entity.ItemTypeSemiFinished)
	rod := testutil.SeedItem(t, db, company.ID, "STEEL-ROD", "Steel Rod", entity.ItemTypeRawMaterial)

	bom := testutil.SeedBOM(t, db, company.ID, table.ID,
		[]entity.BOMComponent{{ItemID: leg.ID, QtyPerUnit: decimal.NewFromInt(4)}}, nil)
	testutil.SeedBOM(t, db, company.ID, leg.ID,
		[]entity.BOMComponent{{ItemID: rod.ID, QtyPerUnit: decimal.NewFromInt(1)}}, nil)

	if _, err := resolver.Resolve(bom.ID, company.ID); err != nil {
		t.Errorf("multi-level BOM without cycle should resolve, got %v", err)
	}
}
