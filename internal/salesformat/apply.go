package salesformat

import (
	"context"
	"fmt"
	"sync"

	"almacen-backend/internal/config"
	"almacen-backend/internal/logger"
	"almacen-backend/internal/models"
	"almacen-backend/internal/sheets"

	"github.com/google/uuid"
)

var log = logger.Log

// Columnas que se combinan en una venta de varias filas.
var mergedCols = []int{
	models.SaleColDate,
	models.SaleColTime,
	models.SaleColTotal,
	models.SaleColCash,
	models.SaleColTransfer,
	models.SaleColCard,
	models.SaleColEmployee,
	models.SaleColID,
}

var (
	SubtotalStyle = sheets.CellStyle{Bold: true, FontColor: "#1B5E20"}
	TotalStyle    = sheets.CellStyle{Bold: true, FontColor: "#0D47A1", Background: "#FFF59D", FontSize: 12}
)

type Result struct {
	Groups      int `json:"grupos"`
	Merged      int `json:"fusionados"`
	RepairedIDs int `json:"ids_reparados"`
	Errors      int `json:"errores"`
}

// Formatter agrupa visualmente las filas de Ventas.
type Formatter struct {
	mu    sync.Mutex
	store sheets.Store
	mode  string
	newID func() string
}

func New(store sheets.Store, mode string) *Formatter {
	if mode != config.GroupByDateTime {
		mode = config.GroupByID
	}
	return &Formatter{store: store, mode: mode, newID: uuid.NewString}
}

// Run repara ids, deshace las combinaciones existentes y vuelve a combinar
// y dar estilo a cada venta. Sólo devuelve error si no pudo leer la hoja;
// el resto de las fallas se loguean y se cuentan.
func (f *Formatter) Run(ctx context.Context) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var res Result
	raw, err := f.store.ReadRows(ctx, sheets.SheetSales)
	if err != nil {
		return res, fmt.Errorf("leer ventas: %w", err)
	}
	rows := models.ParseSaleRows(raw)
	if len(rows) == 0 {
		return res, nil
	}

	if f.mode == config.GroupByID {
		for _, r := range RepairIDs(rows, f.newID) {
			if err := f.store.UpdateCell(ctx, sheets.SheetSales, r.Row, models.SaleColID, r.ID); err != nil {
				log.Warningf("No se pudo reparar el id de la fila %d: %v", r.Row, err)
				res.Errors++
				continue
			}
			res.RepairedIDs++
		}
	}

	if err := f.store.UnmergeAll(ctx, sheets.SheetSales); err != nil {
		log.Warningf("No se pudieron deshacer las combinaciones de Ventas: %v", err)
		res.Errors++
	}

	groups := Partition(rows, f.mode)
	res.Groups = len(groups)

	ops := make([]sheets.FormatOp, 0, len(groups)*(len(mergedCols)+5))
	for _, g := range groups {
		if g.Size() > 1 {
			for _, col := range mergedCols {
				ops = append(ops, sheets.FormatOp{Kind: sheets.OpMerge, FromRow: g.FromRow, ToRow: g.ToRow, Col: col})
			}
			res.Merged++
		}
		ops = append(ops, sheets.FormatOp{Kind: sheets.OpStyle, FromRow: g.FromRow, ToRow: g.ToRow, Col: models.SaleColSubtotal, Style: SubtotalStyle})
		for col := models.SaleColTotal; col <= models.SaleColCard; col++ {
			ops = append(ops, sheets.FormatOp{Kind: sheets.OpStyle, FromRow: g.FromRow, ToRow: g.ToRow, Col: col, Style: TotalStyle})
		}
	}

	failed, err := f.store.ApplyFormat(ctx, sheets.SheetSales, ops)
	if err != nil {
		log.Warningf("Formato de Ventas con %d errores: %v", failed, err)
	}
	res.Errors += failed

	log.Debugf("Ventas formateadas: %d grupos, %d combinados, %d ids reparados, %d errores",
		res.Groups, res.Merged, res.RepairedIDs, res.Errors)
	return res, nil
}
