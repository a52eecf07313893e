package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"roomfinder/internal/domain/rooms"
)

// catalogRecord is one room as written in a catalog file.
type catalogRecord struct {
	RoomNo        string `json:"room_no" yaml:"room_no"`
	RoomTypeID    string `json:"room_type_id" yaml:"room_type_id"`
	RoomTypeName  string `json:"room_type_name" yaml:"room_type_name"`
	MaxCapacity   int    `json:"max_capacity" yaml:"max_capacity"`
	PriceWeekdays int64  `json:"price_weekdays" yaml:"price_weekdays"`
	PriceWeekends int64  `json:"price_weekends" yaml:"price_weekends"`
	PriceFestival int64  `json:"price_festival" yaml:"price_festival"`
	Image         string `json:"image,omitempty" yaml:"image,omitempty"`
}

func (r catalogRecord) spec() rooms.RoomSpec {
	return rooms.RoomSpec{
		RoomNo:   strings.TrimSpace(r.RoomNo),
		TypeID:   strings.TrimSpace(r.RoomTypeID),
		TypeName: strings.TrimSpace(r.RoomTypeName),
		Capacity: r.MaxCapacity,
		Rates: rooms.Rates{
			Weekday: r.PriceWeekdays,
			Weekend: r.PriceWeekends,
			Holiday: r.PriceFestival,
		},
		Image: strings.TrimSpace(r.Image),
	}
}

// LoadRoomCatalogFile reads a JSON or YAML list of rooms. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON.
func LoadRoomCatalogFile(path string) (*RoomCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read room catalog: %w", err)
	}
	specs, err := ParseRoomCatalog(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("room catalog %s: %w", path, err)
	}
	return NewRoomCatalog(specs)
}

// ParseRoomCatalog decodes catalog records; ext selects the format.
func ParseRoomCatalog(raw []byte, ext string) ([]rooms.RoomSpec, error) {
	var records []catalogRecord
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	specs := make([]rooms.RoomSpec, 0, len(records))
	for _, r := range records {
		specs = append(specs, r.spec())
	}
	return specs, nil
}
