package service

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/entity"
	"github.com/tishbian-meshach/Manufacturing-ERP-sub001/internal/mfg/repository"
)

var ledgerExportHeaders = []string{"物料编码", "物料名称", "数量变动", "凭证类型", "关联单据", "操作人", "时间"}

// ExportLedger 导出台账到Excel
func (s *LedgerService) ExportLedger(params repository.LedgerListParams) (*excelize.File, string, error) {
	// 导出不分页
	params.Page = 1
	params.Size = 10000
	entries, _, err := s.ledgerRepo.List(params)
	if err != nil {
		return nil, "", fmt.Errorf("读取台账失败: %w", err)
	}

	// 物料信息按ID去重查询
	itemsByID := make(map[string]entity.Item)
	for _, e := range entries {
		if _, ok := itemsByID[e.ItemID]; ok {
			continue
		}
		item, err := s.itemRepo.GetByID(e.ItemID, params.CompanyID)
		if err != nil {
			continue
		}
		itemsByID[e.ItemID] = *item
	}

	f := excelize.NewFile()
	sheet := "StockLedger"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range ledgerExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for row, e := range entries {
		item := itemsByID[e.ItemID]
		values := []interface{}{
			item.Code,
			item.Name,
			e.QtyDelta.String(),
			e.VoucherType,
			e.ReferenceID,
			e.CreatedBy,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for i, v := range values {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row+2), v)
		}
	}

	filename := fmt.Sprintf("stock-ledger-%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
