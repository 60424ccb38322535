package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-cart/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files and inserts/updates products.
//
// A row with a key starts a product. Following rows without a key add menu
// variants or modifier options to that product.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	projectID   string
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, projectID string, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		projectID:   projectID,
		logger:      logger,
	}
}

type csvRow struct {
	line     int
	product  domain.Product
	variant  *domain.MenuVariant
	modGroup string
	modifier *domain.ModifierOption
	deposit  *decimal.Decimal
}

// Run parses CSV rows and upserts products grouped by product key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *domain.Product
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if row.product.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			p := row.product
			current = &p
		} else if current == nil {
			return imported, fmt.Errorf("line %d: continuation row before any product", line)
		}
		if err := attachMenu(current, row); err != nil {
			return imported, err
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("catalog imported", zap.Int("products", imported), zap.String("project_id", i.projectID))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	if p.Name == "" || p.Currency == "" {
		return fmt.Errorf("invalid product row (missing required fields) for key %q", p.Key)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("negative price for key %q", p.Key)
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return fmt.Errorf("invalid id for key %q: %s", p.Key, p.ID)
		}
	}
	if !p.Type.IsMenu() && p.Menu != nil {
		return fmt.Errorf("product %q: only menu items carry variants or modifiers", p.Key)
	}
	p.ProjectID = i.projectID

	if _, err := i.productRepo.Upsert(ctx, *p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Key, err)
	}
	return nil
}

func attachMenu(p *domain.Product, row *csvRow) error {
	if row.variant == nil && row.modifier == nil && row.deposit == nil {
		return nil
	}
	if p.Menu == nil {
		p.Menu = &domain.MenuPricing{}
	}
	if row.deposit != nil {
		p.Menu.Deposit = *row.deposit
	}
	if row.variant != nil {
		p.Menu.Variants = append(p.Menu.Variants, *row.variant)
	}
	if row.modifier != nil {
		if row.modGroup == "" {
			return fmt.Errorf("line %d: modifier without group", row.line)
		}
		for gi := range p.Menu.ModifierGroups {
			if p.Menu.ModifierGroups[gi].Code == row.modGroup {
				p.Menu.ModifierGroups[gi].Options = append(p.Menu.ModifierGroups[gi].Options, *row.modifier)
				return nil
			}
		}
		p.Menu.ModifierGroups = append(p.Menu.ModifierGroups, domain.ModifierGroup{
			Code:    row.modGroup,
			Options: []domain.ModifierOption{*row.modifier},
		})
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	row := &csvRow{line: line}
	key := pick(record, index, "key")
	variantCode := pick(record, index, "variant.code")
	modOption := pick(record, index, "modifier.option")
	deposit := pick(record, index, "deposit")

	if key == "" && variantCode == "" && modOption == "" {
		return nil, nil
	}

	if key != "" {
		productType, err := domain.ParseProductType(pick(record, index, "productType"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price, err := parseMoney(pick(record, index, "price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: price: %w", line, err)
		}
		row.product = domain.Product{
			ID:          pick(record, index, "id"),
			Key:         key,
			SKU:         pick(record, index, "sku"),
			Name:        pick(record, index, "name"),
			Description: pick(record, index, "description"),
			Type:        productType,
			Price:       price,
			Currency:    strings.ToUpper(pick(record, index, "currency")),
		}
		if raw := pick(record, index, "stock"); raw != "" {
			stock, err := strconv.Atoi(raw)
			if err != nil || stock < 0 {
				return nil, fmt.Errorf("line %d: invalid stock %q", line, raw)
			}
			row.product.Stock = &stock
		}
	}

	if variantCode != "" {
		price, err := parseMoney(pick(record, index, "variant.price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: variant price: %w", line, err)
		}
		row.variant = &domain.MenuVariant{Code: variantCode, Name: pick(record, index, "variant.name"), Price: price}
	}
	if modOption != "" {
		price, err := parseMoney(pick(record, index, "modifier.price"))
		if err != nil {
			return nil, fmt.Errorf("line %d: modifier price: %w", line, err)
		}
		row.modGroup = pick(record, index, "modifier.group")
		row.modifier = &domain.ModifierOption{Code: modOption, Name: pick(record, index, "modifier.name"), Price: price}
	}
	if deposit != "" {
		d, err := parseMoney(deposit)
		if err != nil {
			return nil, fmt.Errorf("line %d: deposit: %w", line, err)
		}
		row.deposit = &d
	}
	return row, nil
}

func parseMoney(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.RoundMoney(d), nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
