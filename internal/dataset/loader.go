package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Reference file names as shipped in the official postal dataset.
const (
	cityFile   = "PCS_WPL.dat" // cityID~name
	streetFile = "PCS_STR.dat" // streetID~name
	rangeFile  = "PCS_HNR.dat" // pc6|from|to|streetID|cityID
)

// Loader reads the raw reference files into the Row form consumed by Load.
// Lines it cannot interpret are skipped and counted, not fatal: the official
// files carry stray blank lines and occasional malformed records.
type Loader struct {
	dir    string
	logger *zap.Logger
}

// NewLoader creates a loader rooted at the dataset directory.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// LoadRows reads the three reference files and joins them into rows.
func (l *Loader) LoadRows() ([]Row, error) {
	cities, err := l.readNameFile(cityFile)
	if err != nil {
		return nil, fmt.Errorf("reading city file: %w", err)
	}
	streets, err := l.readNameFile(streetFile)
	if err != nil {
		return nil, fmt.Errorf("reading street file: %w", err)
	}
	rows, err := l.readRangeFile(rangeFile, streets, cities)
	if err != nil {
		return nil, fmt.Errorf("reading range file: %w", err)
	}

	l.logger.Info("reference dataset read",
		zap.Int("cities", len(cities)),
		zap.Int("streets", len(streets)),
		zap.Int("rows", len(rows)))
	return rows, nil
}

// readNameFile parses an id~name file. The delimiter is "~" in current
// dataset releases, "|" in older ones.
func (l *Loader) readNameFile(name string) (map[int]string, error) {
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[int]string)
	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idStr, value, ok := splitNameLine(line)
		if !ok {
			skipped++
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(idStr))
		if err != nil {
			skipped++
			continue
		}
		out[id] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		l.logger.Warn("skipped unparseable lines", zap.String("file", name), zap.Int("count", skipped))
	}
	return out, nil
}

func splitNameLine(line string) (id, value string, ok bool) {
	for _, sep := range []string{"~", "|"} {
		if idx := strings.Index(line, sep); idx > 0 {
			return line[:idx], line[idx+1:], true
		}
	}
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1], true
	}
	return "", "", false
}

// readRangeFile parses the pipe-delimited pc6|from|to|streetID|cityID file
// and joins street and city ids against the name maps.
func (l *Loader) readRangeFile(name string, streets, cities map[int]string) ([]Row, error) {
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []Row
	skipped := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		row, ok := l.parseRangeLine(line, streets, cities)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		l.logger.Warn("skipped unparseable lines", zap.String("file", name), zap.Int("count", skipped))
	}
	return rows, nil
}

func (l *Loader) parseRangeLine(line string, streets, cities map[int]string) (Row, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < 5 {
		return Row{}, false
	}

	pc6 := strings.TrimSpace(parts[0])
	if len(pc6) != 6 {
		return Row{}, false
	}
	from, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Row{}, false
	}
	to := from
	if t := strings.TrimSpace(parts[2]); t != "" {
		if to, err = strconv.Atoi(t); err != nil {
			return Row{}, false
		}
	}
	streetID, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return Row{}, false
	}
	cityID, err := strconv.Atoi(strings.TrimSpace(parts[4]))
	if err != nil {
		return Row{}, false
	}

	street, ok := streets[streetID]
	if !ok {
		return Row{}, false
	}
	city, ok := cities[cityID]
	if !ok {
		return Row{}, false
	}

	return Row{
		PostalCode: pc6,
		City:       city,
		Street:     street,
		From:       from,
		To:         to,
		Parity:     inferParity(from, to),
	}, true
}

// inferParity derives the parity constraint from the range endpoints. A
// range whose endpoints share parity covers one side of the street; the
// official files encode odd/even sides this way rather than with an
// explicit flag.
func inferParity(from, to int) Parity {
	if from%2 == 0 && to%2 == 0 {
		return ParityEven
	}
	if from%2 != 0 && to%2 != 0 {
		return ParityOdd
	}
	return ParityAny
}
