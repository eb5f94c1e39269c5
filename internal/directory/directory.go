// Package directory holds the static lookups that tie the subway and bus feeds
// to human readable names: complex IDs, raw station IDs, GTFS stop IDs and bus
// stop IDs. A Directory is immutable once built and safe for concurrent use.
//
// The built in directory is the station table in data/stations.csv (the MTA
// Stations.csv layout) combined with the overlay in data/directory.yml, which
// names the multi-platform complexes and lists the bus stops.
package directory

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

//go:embed data/directory.yml
var defaultData []byte

//go:embed data/stations.csv
var defaultStations []byte

// Complex is an aggregated subway station covering one or more platforms.
type Complex struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Lines []string `yaml:"lines"`
}

// Station is a raw station ID cross-referenced to its complex and GTFS stop.
type Station struct {
	ID         string `yaml:"id" csv:"Station ID"`
	ComplexID  string `yaml:"complexId" csv:"Complex ID"`
	GTFSStopID string `yaml:"gtfsStopId" csv:"GTFS Stop ID"`
	Name       string `yaml:"name" csv:"Stop Name"`
	Routes     Routes `yaml:"routes" csv:"Daytime Routes"`
}

// Routes is the space separated daytime route list of a station.
type Routes []string

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (r *Routes) UnmarshalCSV(value string) error {
	*r = strings.Fields(value)
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (r Routes) MarshalCSV() (string, error) {
	return strings.Join(r, " "), nil
}

// BusStop is a monitored bus stop.
type BusStop struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Lines []string `yaml:"lines"`
}

type document struct {
	Complexes []Complex `yaml:"complexes"`
	Stations  []Station `yaml:"stations"`
	BusStops  []BusStop `yaml:"busStops"`
}

// Directory resolves identifiers across the three ID namespaces.
type Directory struct {
	complexes       map[string]Complex
	stations        map[string]Station
	stationsByGTFS  map[string]Station
	gtfsByComplex   map[string][]string
	busStops        map[string]BusStop
	complexOrdering []string
}

// Default returns the directory compiled into the binary.
func Default() (*Directory, error) {
	return Build(bytes.NewReader(defaultStations), bytes.NewReader(defaultData))
}

// LoadSources builds a directory from a station table and a YAML overlay.
// An empty path selects the built in copy of that file.
func LoadSources(overlayPath, stationsPath string) (*Directory, error) {
	var stations io.Reader = bytes.NewReader(defaultStations)
	if stationsPath != "" {
		f, err := os.Open(stationsPath)
		if err != nil {
			return nil, fmt.Errorf("error opening stations file: %w", err)
		}
		defer f.Close() // nolint
		stations = f
	}

	var overlay io.Reader = bytes.NewReader(defaultData)
	if overlayPath != "" {
		f, err := os.Open(overlayPath)
		if err != nil {
			return nil, fmt.Errorf("error opening directory file: %w", err)
		}
		defer f.Close() // nolint
		overlay = f
	}

	return Build(stations, overlay)
}

// Build combines a station table with a YAML overlay. Overlay complexes name
// and order the complexes they list, overlay stations replace table rows with
// the same station ID, and bus stops come from the overlay alone.
func Build(stationsCSV, overlay io.Reader) (*Directory, error) {
	stations, err := ParseStations(stationsCSV)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(overlay)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding directory: %w", err)
	}

	return New(doc.Complexes, mergeStations(stations, doc.Stations), doc.BusStops)
}

// ParseStations decodes a station table in the MTA Stations.csv layout.
// Columns other than the ones Station maps are ignored.
func ParseStations(r io.Reader) ([]Station, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var stations []Station
	if err := gocsv.UnmarshalCSV(reader, &stations); err != nil {
		return nil, fmt.Errorf("error decoding stations: %w", err)
	}
	return stations, nil
}

func mergeStations(base, overlay []Station) []Station {
	if len(overlay) == 0 {
		return base
	}
	index := make(map[string]int, len(base))
	merged := append([]Station(nil), base...)
	for i, s := range merged {
		index[s.ID] = i
	}
	for _, s := range overlay {
		if i, ok := index[s.ID]; ok {
			merged[i] = s
			continue
		}
		index[s.ID] = len(merged)
		merged = append(merged, s)
	}
	return merged
}

// LoadFile reads a self-contained directory from a YAML file.
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening directory file: %w", err)
	}
	defer f.Close() // nolint

	return Load(f)
}

// Load reads a self-contained directory from r.
func Load(r io.Reader) (*Directory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}
	return Parse(data)
}

// Parse builds a Directory from YAML.
func Parse(data []byte) (*Directory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding directory: %w", err)
	}
	return New(doc.Complexes, doc.Stations, doc.BusStops)
}

// New builds a Directory from already decoded entries. Duplicate or blank
// identifiers are rejected. Complexes referenced by stations but not listed
// are derived from their stations: the stop names joined with " / " and the
// union of their routes.
func New(complexes []Complex, stations []Station, busStops []BusStop) (*Directory, error) {
	d := &Directory{
		complexes:      make(map[string]Complex, len(complexes)),
		stations:       make(map[string]Station, len(stations)),
		stationsByGTFS: make(map[string]Station, len(stations)),
		gtfsByComplex:  make(map[string][]string),
		busStops:       make(map[string]BusStop, len(busStops)),
	}

	for _, c := range complexes {
		if c.ID == "" {
			return nil, fmt.Errorf("complex %q has no id", c.Name)
		}
		if _, dup := d.complexes[c.ID]; dup {
			return nil, fmt.Errorf("duplicate complex id %s", c.ID)
		}
		c.Lines = append([]string(nil), c.Lines...)
		d.complexes[c.ID] = c
		d.complexOrdering = append(d.complexOrdering, c.ID)
	}

	derived := make(map[string]*Complex)
	for _, s := range stations {
		if s.ID == "" || s.ComplexID == "" {
			return nil, fmt.Errorf("station %q needs both id and complexId", s.Name)
		}
		if _, dup := d.stations[s.ID]; dup {
			return nil, fmt.Errorf("duplicate station id %s", s.ID)
		}
		s.Routes = append(Routes(nil), s.Routes...)
		d.stations[s.ID] = s
		if s.GTFSStopID != "" {
			if _, dup := d.stationsByGTFS[s.GTFSStopID]; dup {
				return nil, fmt.Errorf("duplicate gtfs stop id %s", s.GTFSStopID)
			}
			d.stationsByGTFS[s.GTFSStopID] = s
			d.gtfsByComplex[s.ComplexID] = append(d.gtfsByComplex[s.ComplexID], s.GTFSStopID)
		}

		if _, declared := d.complexes[s.ComplexID]; declared {
			continue
		}
		c, ok := derived[s.ComplexID]
		if !ok {
			c = &Complex{ID: s.ComplexID}
			derived[s.ComplexID] = c
			d.complexOrdering = append(d.complexOrdering, s.ComplexID)
		}
		c.Name = appendUnique(c.Name, s.Name)
		for _, route := range s.Routes {
			if !slices.Contains(c.Lines, route) {
				c.Lines = append(c.Lines, route)
			}
		}
	}
	for id, c := range derived {
		d.complexes[id] = *c
	}

	for _, b := range busStops {
		if b.ID == "" {
			return nil, fmt.Errorf("bus stop %q has no id", b.Name)
		}
		if _, dup := d.busStops[b.ID]; dup {
			return nil, fmt.Errorf("duplicate bus stop id %s", b.ID)
		}
		b.Lines = append([]string(nil), b.Lines...)
		d.busStops[b.ID] = b
	}

	return d, nil
}

func appendUnique(name, part string) string {
	switch {
	case part == "":
		return name
	case name == "":
		return part
	case slices.Contains(strings.Split(name, " / "), part):
		return name
	}
	return name + " / " + part
}

// Complex looks up a complex by ID.
func (d *Directory) Complex(id string) (Complex, bool) {
	c, ok := d.complexes[id]
	if !ok {
		return Complex{}, false
	}
	c.Lines = append([]string(nil), c.Lines...)
	return c, true
}

// ComplexName returns the display name of a complex.
func (d *Directory) ComplexName(id string) (string, bool) {
	c, ok := d.complexes[id]
	return c.Name, ok
}

// ComplexIDs lists every complex, declared ones first and derived ones in
// station table order.
func (d *Directory) ComplexIDs() []string {
	return append([]string(nil), d.complexOrdering...)
}

// ComplexIDForStation maps a raw station ID onto its complex ID.
func (d *Directory) ComplexIDForStation(stationID string) (string, bool) {
	s, ok := d.stations[stationID]
	return s.ComplexID, ok
}

// StationForGTFSStop resolves a parent GTFS stop ID (no direction suffix).
func (d *Directory) StationForGTFSStop(gtfsStopID string) (Station, bool) {
	s, ok := d.stationsByGTFS[gtfsStopID]
	if !ok {
		return Station{}, false
	}
	s.Routes = append(Routes(nil), s.Routes...)
	return s, true
}

// GTFSStopsForComplex lists the parent GTFS stop IDs belonging to a complex.
func (d *Directory) GTFSStopsForComplex(complexID string) []string {
	return append([]string(nil), d.gtfsByComplex[complexID]...)
}

// BusStop looks up a bus stop by ID.
func (d *Directory) BusStop(id string) (BusStop, bool) {
	b, ok := d.busStops[id]
	if !ok {
		return BusStop{}, false
	}
	b.Lines = append([]string(nil), b.Lines...)
	return b, true
}

// Stats reports the number of entries per namespace.
func (d *Directory) Stats() (complexes, stations, busStops int) {
	return len(d.complexes), len(d.stations), len(d.busStops)
}
