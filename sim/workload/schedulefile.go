package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/parklot/parklot-sim/sim"
)

// ScheduleHeader describes where an exported schedule came from.
type ScheduleHeader struct {
	Version     int     `yaml:"version"`
	Seed        int64   `yaml:"seed"`
	Rate        float64 `yaml:"rate"`
	Process     string  `yaml:"process"`
	NumVehicles int     `yaml:"num_vehicles"`
	Note        string  `yaml:"note,omitempty"`
}

// ScheduleFile combines header and arrivals for a complete exported schedule.
type ScheduleFile struct {
	Header   ScheduleHeader
	Arrivals []sim.Arrival
}

// CSV column headers for the schedule format.
var scheduleColumns = []string{"id", "time", "accessible", "shop_duration"}

// HeaderFor builds the header of a schedule generated from spec.
func HeaderFor(spec *ScheduleSpec, arrivals []sim.Arrival) ScheduleHeader {
	process := spec.Arrival.Process
	if process == "" {
		process = "poisson"
	}
	return ScheduleHeader{
		Version:     1,
		Seed:        spec.Seed,
		Rate:        spec.Rate,
		Process:     process,
		NumVehicles: len(arrivals),
	}
}

// ExportSchedule writes the header (YAML) and arrivals (CSV) to separate
// files. An empty headerPath skips the header.
func ExportSchedule(header *ScheduleHeader, arrivals []sim.Arrival, headerPath, dataPath string) error {
	if headerPath != "" {
		headerData, err := yaml.Marshal(header)
		if err != nil {
			return fmt.Errorf("marshaling schedule header: %w", err)
		}
		if err := os.WriteFile(headerPath, headerData, 0644); err != nil {
			return fmt.Errorf("writing schedule header: %w", err)
		}
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating schedule data file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteScheduleCSV(file, arrivals)
}

// WriteScheduleCSV writes arrivals as CSV with a header row.
func WriteScheduleCSV(w io.Writer, arrivals []sim.Arrival) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(scheduleColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, a := range arrivals {
		row := []string{
			a.ID,
			strconv.FormatFloat(a.Time, 'f', -1, 64),
			strconv.FormatBool(a.Accessible),
			strconv.FormatFloat(a.ShopDuration, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", a.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadSchedule reads a schedule header (YAML, optional) and arrivals (CSV).
func LoadSchedule(headerPath, dataPath string) (*ScheduleFile, error) {
	var header ScheduleHeader
	if headerPath != "" {
		headerData, err := os.ReadFile(headerPath)
		if err != nil {
			return nil, fmt.Errorf("reading schedule header: %w", err)
		}
		if err := yaml.Unmarshal(headerData, &header); err != nil {
			return nil, fmt.Errorf("parsing schedule header: %w", err)
		}
	}

	file, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("opening schedule data: %w", err)
	}
	defer func() { _ = file.Close() }()

	arrivals, err := ReadScheduleCSV(file)
	if err != nil {
		return nil, err
	}
	return &ScheduleFile{Header: header, Arrivals: arrivals}, nil
}

// ReadScheduleCSV parses arrivals written by WriteScheduleCSV and validates
// them as a runnable schedule.
func ReadScheduleCSV(r io.Reader) ([]sim.Arrival, error) {
	reader := csv.NewReader(r)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var arrivals []sim.Arrival
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(row) < len(scheduleColumns) {
			return nil, fmt.Errorf("CSV row has %d columns, expected %d", len(row), len(scheduleColumns))
		}
		a, err := parseArrival(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		arrivals = append(arrivals, a)
	}
	if err := sim.ValidateSchedule(arrivals); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}
	return arrivals, nil
}

func parseArrival(row []string) (sim.Arrival, error) {
	at, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return sim.Arrival{}, fmt.Errorf("parsing time %q: %w", row[1], err)
	}
	accessible, err := strconv.ParseBool(row[2])
	if err != nil {
		return sim.Arrival{}, fmt.Errorf("parsing accessible %q: %w", row[2], err)
	}
	shop, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return sim.Arrival{}, fmt.Errorf("parsing shop_duration %q: %w", row[3], err)
	}
	return sim.Arrival{ID: row[0], Time: at, Accessible: accessible, ShopDuration: shop}, nil
}
