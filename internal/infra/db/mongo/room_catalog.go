package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roomfinder/internal/domain/rooms"
)

const roomsCollection = "rooms"

// RoomCatalog reads room metadata from the rooms collection, ordered by position.
type RoomCatalog struct {
	col *mongo.Collection
}

func NewRoomCatalog(db *mongo.Database) *RoomCatalog {
	col := db.Collection(roomsCollection)
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "room_no", Value: 1}}, Options: options.Index().SetUnique(true)})
	return &RoomCatalog{col: col}
}

type roomDocument struct {
	RoomNo        string `bson:"room_no"`
	RoomTypeID    string `bson:"room_type_id"`
	RoomTypeName  string `bson:"room_type_name"`
	MaxCapacity   int    `bson:"max_capacity"`
	PriceWeekdays int64  `bson:"price_weekdays"`
	PriceWeekends int64  `bson:"price_weekends"`
	PriceFestival int64  `bson:"price_festival"`
	Image         string `bson:"image,omitempty"`
	Position      int    `bson:"position"`
}

func (d roomDocument) toSpec() rooms.RoomSpec {
	return rooms.RoomSpec{
		RoomNo:   d.RoomNo,
		TypeID:   d.RoomTypeID,
		TypeName: d.RoomTypeName,
		Capacity: d.MaxCapacity,
		Rates:    rooms.Rates{Weekday: d.PriceWeekdays, Weekend: d.PriceWeekends, Holiday: d.PriceFestival},
		Image:    d.Image,
	}
}

func (c *RoomCatalog) List(ctx context.Context) ([]rooms.RoomSpec, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "room_no", Value: 1}})
	cur, err := c.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list rooms: %w", err)
	}
	var docs []roomDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode rooms: %w", err)
	}
	specs := make([]rooms.RoomSpec, 0, len(docs))
	for _, d := range docs {
		specs = append(specs, d.toSpec())
	}
	if err := rooms.Validate(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// Upsert writes specs keeping their slice order as position.
func (c *RoomCatalog) Upsert(ctx context.Context, specs []rooms.RoomSpec) error {
	if err := rooms.Validate(specs); err != nil {
		return err
	}
	for i, s := range specs {
		doc := roomDocument{
			RoomNo:        s.RoomNo,
			RoomTypeID:    s.TypeID,
			RoomTypeName:  s.TypeName,
			MaxCapacity:   s.Capacity,
			PriceWeekdays: s.Rates.Weekday,
			PriceWeekends: s.Rates.Weekend,
			PriceFestival: s.Rates.Holiday,
			Image:         s.Image,
			Position:      i,
		}
		_, err := c.col.UpdateOne(ctx, bson.M{"room_no": s.RoomNo}, bson.M{"$set": doc}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("mongo: upsert room %s: %w", s.RoomNo, err)
		}
	}
	return nil
}

var _ rooms.Catalog = (*RoomCatalog)(nil)
