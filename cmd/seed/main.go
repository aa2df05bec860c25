// seed carga el inventario inicial de la farmacia desde un CSV exportado de la planilla
// de recepción. Cada fila es un lote: crea la categoría y el producto si no existen y
// registra el lote con su ENTRADA en el kardex.
//
// Uso: go run ./cmd/seed [ruta/inventario.csv]
// Columnas: producto;principio_activo;laboratorio;categoria;stock_minimo;lote;vencimiento;cantidad;costo;precio
// Acepta UTF-8 o ISO-8859-1 (exportación de Excel), separador ';' o ','.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

const seedUser = "seed"

// seedRow una fila del CSV ya interpretada.
type seedRow struct {
	Line            int
	Product         string
	ActiveSubstance string
	Laboratory      string
	Category        string
	MinStock        int
	LotCode         string
	Expiration      time.Time
	Quantity        int
	UnitCost        decimal.Decimal
	UnitPrice       decimal.Decimal
}

func main() {
	csvPath := "inventario.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("abrir CSV")
	}
	rows, err := parseRows(decodeCharset(raw))
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("leer CSV")
	}

	ctx := context.Background()
	if cfg.DB.RunMigrations {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	products := postgres.NewProductRepository(pool)
	categories := postgres.NewCategoryRepository(pool)
	lots := postgres.NewLotRepository(pool)
	movs := postgres.NewMovementRepository(pool)

	imp := &importer{
		products:   catalog.NewProductUseCase(products, categories, lots),
		categories: catalog.NewCategoryUseCase(categories),
		lots:       inventory.NewLotUseCase(postgres.NewTxRunner(pool), lots, products, movs, nil, log),
		log:        log,
	}
	sum, err := imp.Import(ctx, rows)
	if err != nil {
		log.Fatal().Err(err).Msg("importación interrumpida")
	}
	fmt.Printf("Importado %s: %d productos nuevos, %d lotes, %d filas omitidas\n",
		csvPath, sum.Products, sum.Lots, sum.Skipped)
}

// decodeCharset convierte a UTF-8 los archivos guardados en ISO-8859-1.
func decodeCharset(raw []byte) io.Reader {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

// parseRows lee el CSV con encabezado. Detecta el separador en la primera línea.
func parseRows(r io.Reader) ([]seedRow, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(256)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	cr := csv.NewReader(br)
	cr.TrimLeadingSpace = true
	if header, _, _ := bytes.Cut(first, []byte("\n")); bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		cr.Comma = ';'
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("el archivo no tiene filas de datos")
	}

	rows := make([]seedRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 10 {
			return nil, fmt.Errorf("línea %d: se esperaban 10 columnas, hay %d", line, len(rec))
		}
		row, err := parseRow(line, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(line int, rec []string) (seedRow, error) {
	row := seedRow{
		Line:            line,
		Product:         strings.TrimSpace(rec[0]),
		ActiveSubstance: strings.TrimSpace(rec[1]),
		Laboratory:      strings.TrimSpace(rec[2]),
		Category:        strings.TrimSpace(rec[3]),
		LotCode:         strings.TrimSpace(rec[5]),
	}
	var err error
	if row.MinStock, err = parseInt(rec[4]); err != nil {
		return row, fmt.Errorf("línea %d: stock_minimo: %w", line, err)
	}
	if row.Expiration, err = parseDate(rec[6]); err != nil {
		return row, fmt.Errorf("línea %d: vencimiento: %w", line, err)
	}
	if row.Quantity, err = parseInt(rec[7]); err != nil {
		return row, fmt.Errorf("línea %d: cantidad: %w", line, err)
	}
	if row.UnitCost, err = parseMoney(rec[8]); err != nil {
		return row, fmt.Errorf("línea %d: costo: %w", line, err)
	}
	if row.UnitPrice, err = parseMoney(rec[9]); err != nil {
		return row, fmt.Errorf("línea %d: precio: %w", line, err)
	}
	return row, nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// parseDate acepta 2025-03-31 y 31/03/2025.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse("02/01/2006", s)
}

// parseMoney acepta coma decimal (7,50) y separador de miles con punto (1.250,00).
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "Bs"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

type summary struct {
	Products int
	Lots     int
	Skipped  int
}

type importer struct {
	products   *catalog.ProductUseCase
	categories *catalog.CategoryUseCase
	lots       *inventory.LotUseCase
	log        *logger.Logger

	categoryIDs map[string]string
	productIDs  map[string]string
}

// Import procesa las filas en orden. Un lote ya cargado (mismo producto y código) se
// omite para que el seed pueda repetirse; cualquier otro error detiene la carga.
func (imp *importer) Import(ctx context.Context, rows []seedRow) (summary, error) {
	var sum summary
	if err := imp.loadCatalog(ctx); err != nil {
		return sum, err
	}
	for _, row := range rows {
		categoryID, err := imp.categoryID(ctx, row.Category)
		if err != nil {
			return sum, fmt.Errorf("línea %d: %w", row.Line, err)
		}
		productID, created, err := imp.productID(ctx, row, categoryID)
		if err != nil {
			return sum, fmt.Errorf("línea %d: %w", row.Line, err)
		}
		if created {
			sum.Products++
		}
		_, err = imp.lots.ReceiveLot(ctx, seedUser, dto.CreateLotRequest{
			ProductID:  productID,
			Code:       row.LotCode,
			Expiration: row.Expiration,
			Quantity:   row.Quantity,
			UnitCost:   &row.UnitCost,
			UnitPrice:  &row.UnitPrice,
		})
		switch {
		case err == nil:
			sum.Lots++
		case errors.Is(err, domain.ErrDuplicate):
			sum.Skipped++
			imp.log.Warn().Int("line", row.Line).Str("lot", row.LotCode).Msg("lote ya cargado, se omite")
		default:
			return sum, fmt.Errorf("línea %d: lote %s: %w", row.Line, row.LotCode, err)
		}
	}
	return sum, nil
}

func (imp *importer) loadCatalog(ctx context.Context) error {
	imp.categoryIDs = make(map[string]string)
	imp.productIDs = make(map[string]string)

	cats, err := imp.categories.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		imp.categoryIDs[strings.ToLower(c.Name)] = c.ID
	}

	for offset := 0; ; offset += 100 {
		page, err := imp.products.List(ctx, dto.ProductQuery{All: true, PageRequest: dto.PageRequest{Limit: 100, Offset: offset}})
		if err != nil {
			return err
		}
		for _, p := range page.Items {
			imp.productIDs[strings.ToLower(p.Name)] = p.ID
		}
		if len(page.Items) < 100 {
			return nil
		}
	}
}

func (imp *importer) categoryID(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if id, ok := imp.categoryIDs[strings.ToLower(name)]; ok {
		return id, nil
	}
	c, err := imp.categories.Create(ctx, dto.CreateCategoryRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("categoría %s: %w", name, err)
	}
	imp.categoryIDs[strings.ToLower(name)] = c.ID
	return c.ID, nil
}

func (imp *importer) productID(ctx context.Context, row seedRow, categoryID string) (string, bool, error) {
	if id, ok := imp.productIDs[strings.ToLower(row.Product)]; ok {
		return id, false, nil
	}
	p, err := imp.products.Create(ctx, dto.CreateProductRequest{
		Name:            row.Product,
		ActiveSubstance: row.ActiveSubstance,
		Laboratory:      row.Laboratory,
		CategoryID:      categoryID,
		MinStock:        row.MinStock,
	})
	if err != nil {
		return "", false, fmt.Errorf("producto %s: %w", row.Product, err)
	}
	imp.productIDs[strings.ToLower(row.Product)] = p.ID
	return p.ID, true, nil
}
