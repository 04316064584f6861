package store

import (
	"context"
	"errors"
	"time"

	perrors "github.com/JobsonDeveloper/Product-Microservice/internal/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var _ ProductStore = (*MongoStore)(nil)

// productDocument is the MongoDB shape of a Product.
type productDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	BarCode           int64              `bson:"barCode"`
	Brand             string             `bson:"brand"`
	Weight            float64            `bson:"weight"`
	Quantity          int64              `bson:"quantity"`
	Value             float64            `bson:"value"`
	Classification    string             `bson:"classification"`
	Description       string             `bson:"description"`
	ManufacturingDate time.Time          `bson:"manufacturingDate"`
	ExpirationDate    time.Time          `bson:"expirationDate"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

// MongoStore implements ProductStore on top of a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoStore creates a new instance of ProductStore backed by the given collection.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{
		collection: db.Collection(collection),
		now:        time.Now,
	}
}

// EnsureIndexes creates the unique barcode index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "barCode", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("barCode_unique"),
	})
	if err != nil {
		return storageError("create barcode index", err)
	}
	return nil
}

// FindByBarCode retrieves a product by its barcode.
// Returns ErrProductNotFound if no product exists with the given barcode.
func (s *MongoStore) FindByBarCode(ctx context.Context, barCode int64) (*Product, error) {
	var doc productDocument
	err := s.collection.FindOne(ctx, bson.M{"barCode": barCode}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, storageError("find product by barcode", err)
	}
	return doc.toProduct(), nil
}

// FindAll retrieves a page of products in natural order along with the total count.
func (s *MongoStore) FindAll(ctx context.Context, offset, limit int64) ([]Product, int64, error) {
	total, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, storageError("count products", err)
	}

	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSkip(offset).SetLimit(limit))
	if err != nil {
		return nil, 0, storageError("find all products", err)
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, storageError("decode products", err)
	}

	products := make([]Product, len(docs))
	for i := range docs {
		products[i] = *docs[i].toProduct()
	}
	return products, total, nil
}

// Create inserts a new product and stamps its timestamps.
// Returns ErrProductAlreadyExists if the barcode is already taken.
func (s *MongoStore) Create(ctx context.Context, product *Product) (*Product, error) {
	doc := toDocument(product)
	doc.ID = primitive.NilObjectID
	doc.CreatedAt = creationTime(product.CreatedAt, s.now)
	doc.UpdatedAt = doc.CreatedAt

	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, perrors.ErrProductAlreadyExists
		}
		return nil, storageError("create product", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toProduct(), nil
}

// Update replaces the stored document with the same identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *MongoStore) Update(ctx context.Context, product *Product) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(product.ID)
	if err != nil {
		return nil, perrors.ErrProductNotFound
	}
	doc := toDocument(product)
	doc.ID = oid

	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, perrors.ErrProductAlreadyExists
		}
		return nil, storageError("update product", err)
	}
	if res.MatchedCount == 0 {
		return nil, perrors.ErrProductNotFound
	}
	return doc.toProduct(), nil
}

// DecrementQuantity subtracts qty only while the stock covers it.
func (s *MongoStore) DecrementQuantity(ctx context.Context, barCode, qty int64, updatedAt time.Time) (*Product, error) {
	filter := bson.M{"barCode": barCode, "quantity": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"quantity": -qty},
		"$set": bson.M{"updatedAt": truncate(updatedAt)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, decrementMiss(ctx, s, barCode)
		}
		return nil, storageError("decrement product quantity", err)
	}
	return doc.toProduct(), nil
}

// DeleteByID removes a product by its identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *MongoStore) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return perrors.ErrProductNotFound
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storageError("delete product", err)
	}
	if res.DeletedCount == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.collection.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return storageError("ping mongo", err)
	}
	return nil
}

func toDocument(p *Product) productDocument {
	return productDocument{
		Name:              p.Name,
		BarCode:           p.BarCode,
		Brand:             p.Brand,
		Weight:            p.Weight,
		Quantity:          p.Quantity,
		Value:             p.Value,
		Classification:    p.Classification,
		Description:       p.Description,
		ManufacturingDate: truncate(p.ManufacturingDate),
		ExpirationDate:    truncate(p.ExpirationDate),
		CreatedAt:         truncate(p.CreatedAt),
		UpdatedAt:         truncate(p.UpdatedAt),
	}
}

func (d *productDocument) toProduct() *Product {
	return &Product{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		BarCode:           d.BarCode,
		Brand:             d.Brand,
		Weight:            d.Weight,
		Quantity:          d.Quantity,
		Value:             d.Value,
		Classification:    d.Classification,
		Description:       d.Description,
		ManufacturingDate: d.ManufacturingDate.UTC(),
		ExpirationDate:    d.ExpirationDate.UTC(),
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}
