package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userEntity = "User"

type UserRepo struct {
	collection *mongo.Collection
	cb         *gobreaker.CircuitBreaker
}

func NewUserRepo(db *mongo.Database, cb *gobreaker.CircuitBreaker) *UserRepo {
	return &UserRepo{collection: db.Collection(usersCollection), cb: cb}
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, r.cb, r.collection, bson.M{"_id": id}, userEntity)
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, r.cb, r.collection, byIDs(ids), options.Find())
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	return findOne[models.User](ctx, r.cb, r.collection, filter, userEntity)
}

func (r *UserRepo) Insert(ctx context.Context, u *models.User) error {
	id, err := insertOne(ctx, r.cb, r.collection, u)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *UserRepo) TouchLastAccess(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return run(r.cb, func() error {
		res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"ultimoAcesso": at}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return models.NotFound(userEntity)
		}
		return nil
	})
}
