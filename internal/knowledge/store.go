// Package knowledge loads the wine knowledge base from a flat-file data
// root and builds the semantic index over it.
package knowledge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"vinobot/internal/domain"
)

// Well-known locations under the data root.
const (
	pairingFile = "food_wine_table.md"
	winesDir    = "wines.txt"
	regionsDir  = "regions.txt"
	menuDir     = "menu"
)

// priceFiles are tried in order; the first one present wins.
var priceFiles = []string{"wine-price-ru.xlsx", "wine-price.xlsx"}

// Store holds the loaded knowledge base. All fields are read-only after
// Load; a restart is required to pick up changed source files.
type Store struct {
	dataDir string
	logger  *slog.Logger

	prices  [][]string        // price workbook rows, header included
	pairing string            // food/wine pairing table, raw markdown
	wines   map[string]string // wine name -> description
	regions map[string]string // region name -> description
	menu    map[string]string // menu section name -> markdown
}

func NewStore(dataDir string, logger *slog.Logger) *Store {
	return &Store{
		dataDir: dataDir,
		logger:  logger.With("component", "knowledge"),
		wines:   make(map[string]string),
		regions: make(map[string]string),
		menu:    make(map[string]string),
	}
}

// Load reads all knowledge sources. Missing files and directories are
// tolerated; per-file read failures are logged and skipped so a partial
// knowledge base still works.
func (s *Store) Load() error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("cannot create data directory %s: %w", s.dataDir, err)
	}

	s.loadPrices()
	s.loadPairingTable()
	s.loadTextDir(winesDir, s.wines)
	s.loadTextDir(regionsDir, s.regions)
	s.loadMenu()

	s.logger.Info("knowledge base loaded",
		"wines", len(s.wines),
		"regions", len(s.regions),
		"menu_sections", len(s.menu),
		"price_rows", len(s.prices),
		"pairing_table", s.pairing != "",
	)
	return nil
}

func (s *Store) loadPrices() {
	for _, name := range priceFiles {
		path := filepath.Join(s.dataDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		f, err := excelize.OpenFile(path)
		if err != nil {
			s.logger.Error("cannot open price workbook", "file", name, "err", err)
			continue
		}

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			continue
		}
		rows, err := f.GetRows(sheets[0])
		f.Close()
		if err != nil {
			s.logger.Error("cannot read price sheet", "file", name, "err", err)
			continue
		}

		s.prices = rows
		s.logger.Info("price list loaded", "file", name, "rows", len(rows))
		return
	}
}

func (s *Store) loadPairingTable() {
	path := filepath.Join(s.dataDir, pairingFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("cannot read pairing table", "file", pairingFile, "err", err)
		}
		return
	}
	s.pairing = string(data)
}

// loadTextDir reads every .txt file in a subdirectory into dst keyed by
// the filename stem.
func (s *Store) loadTextDir(sub string, dst map[string]string) {
	dir := filepath.Join(s.dataDir, sub)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return // absent directory is fine
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			s.logger.Error("cannot read knowledge file", "dir", sub, "file", e.Name(), "err", err)
			continue
		}
		dst[strings.TrimSuffix(e.Name(), ".txt")] = string(data)
	}
}

func (s *Store) loadMenu() {
	dir := filepath.Join(s.dataDir, menuDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			s.logger.Error("cannot read menu section", "file", e.Name(), "err", err)
			continue
		}
		s.menu[strings.TrimSuffix(e.Name(), ".md")] = string(data)
	}
}

// HasPrices reports whether a price workbook was loaded.
func (s *Store) HasPrices() bool { return len(s.prices) > 0 }

// PairingTable returns the raw pairing markdown, empty if not loaded.
func (s *Store) PairingTable() string { return s.pairing }

// MenuSection returns the markdown of one menu section.
func (s *Store) MenuSection(name string) string { return s.menu[name] }

// Documents returns every loaded source as a tagged document, the input
// to the semantic index.
func (s *Store) Documents() []domain.Document {
	var docs []domain.Document

	for name, content := range s.wines {
		docs = append(docs, domain.Document{
			Content: content,
			Type:    domain.DocWine,
			Name:    name,
			Source:  filepath.Join(s.dataDir, winesDir, name+".txt"),
		})
	}
	for name, content := range s.regions {
		docs = append(docs, domain.Document{
			Content: content,
			Type:    domain.DocRegion,
			Name:    name,
			Source:  filepath.Join(s.dataDir, regionsDir, name+".txt"),
		})
	}
	for name, content := range s.menu {
		docs = append(docs, domain.Document{
			Content: content,
			Type:    domain.DocMenu,
			Name:    name,
			Source:  filepath.Join(s.dataDir, menuDir, name+".md"),
		})
	}
	if s.pairing != "" {
		docs = append(docs, domain.Document{
			Content: s.pairing,
			Type:    domain.DocPairing,
			Name:    "food_wine_table",
			Source:  filepath.Join(s.dataDir, pairingFile),
		})
	}
	return docs
}
