// Package jsonfile lee y escribe los ficheros JSON de trades y de resultados.
// El fichero de trades usa el formato de registro de la Data API.
package jsonfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// LoadTrades lee un array JSON de trades desde path.
func LoadTrades(path string) ([]domain.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile.LoadTrades: %w", err)
	}
	defer f.Close()

	trades, err := DecodeTrades(f)
	if err != nil {
		return nil, fmt.Errorf("jsonfile.LoadTrades: %s: %w", path, err)
	}
	return trades, nil
}

// DecodeTrades decodifica un array JSON de registros. Un registro sin los
// campos obligatorios devuelve domain.ErrMalformedTrade con su índice.
func DecodeTrades(r io.Reader) ([]domain.Trade, error) {
	var records []polymarket.TradeRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return polymarket.RecordsToTrades(records)
}

// SaveTrades escribe los trades como array JSON indentado.
// Crea los directorios padre si no existen.
func SaveTrades(path string, trades []domain.Trade) error {
	records := make([]polymarket.TradeRecord, len(trades))
	for i, t := range trades {
		records[i] = polymarket.RecordFromTrade(t)
	}
	if err := writeJSON(path, records); err != nil {
		return fmt.Errorf("jsonfile.SaveTrades: %w", err)
	}
	return nil
}

// writeJSON escribe a un temporal y renombra para no dejar ficheros a medias.
func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
