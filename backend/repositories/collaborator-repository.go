package repositories

import (
	"context"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collaboratorEntity = "Collaborator"

type CollaboratorRepo struct {
	collection *mongo.Collection
	cb         *gobreaker.CircuitBreaker
}

func NewCollaboratorRepo(db *mongo.Database, cb *gobreaker.CircuitBreaker) *CollaboratorRepo {
	return &CollaboratorRepo{collection: db.Collection(collaboratorsCollection), cb: cb}
}

var collaboratorSort = bson.D{{Key: "nomeCompleto", Value: 1}}

func collaboratorQuery(f models.CollaboratorFilter) bson.M {
	query := bson.M{}
	if f.Active != nil {
		query["ativo"] = *f.Active
	}
	if f.Role != "" {
		query["cargo"] = f.Role
	}
	if f.Search != "" {
		query["$or"] = searchAny(f.Search, "nomeCompleto", "email", "matricula")
	}
	return query
}

func (r *CollaboratorRepo) Find(ctx context.Context, filter models.CollaboratorFilter, page utils.Pagination) ([]models.Collaborator, int64, error) {
	return findPage[models.Collaborator](ctx, r.cb, r.collection, collaboratorQuery(filter), pageOptions(page, collaboratorSort))
}

func (r *CollaboratorRepo) FindAll(ctx context.Context, filter models.CollaboratorFilter) ([]models.Collaborator, error) {
	return findAll[models.Collaborator](ctx, r.cb, r.collection, collaboratorQuery(filter), options.Find().SetSort(collaboratorSort))
}

func (r *CollaboratorRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collaborator, error) {
	return findOne[models.Collaborator](ctx, r.cb, r.collection, bson.M{"_id": id}, collaboratorEntity)
}

func (r *CollaboratorRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collaborator, error) {
	if len(ids) == 0 {
		return []models.Collaborator{}, nil
	}
	return findAll[models.Collaborator](ctx, r.cb, r.collection, byIDs(ids), options.Find())
}

func (r *CollaboratorRepo) Insert(ctx context.Context, c *models.Collaborator) error {
	id, err := insertOne(ctx, r.cb, r.collection, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CollaboratorRepo) Replace(ctx context.Context, c *models.Collaborator) error {
	return replaceOne(ctx, r.cb, r.collection, c.ID, c, collaboratorEntity)
}

func (r *CollaboratorRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.cb, r.collection, id, collaboratorEntity)
}
