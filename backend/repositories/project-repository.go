package repositories

import (
	"context"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const projectEntity = "Project"

type ProjectRepo struct {
	collection *mongo.Collection
	cb         *gobreaker.CircuitBreaker
}

func NewProjectRepo(db *mongo.Database, cb *gobreaker.CircuitBreaker) *ProjectRepo {
	return &ProjectRepo{collection: db.Collection(projectsCollection), cb: cb}
}

func projectQuery(f models.ProjectFilter) bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Priority != "" {
		query["prioridade"] = f.Priority
	}
	if f.Search != "" {
		query["$or"] = searchAny(f.Search, "nome", "descricao", "cliente")
	}
	return query
}

// openAssignment matches the assignment of collaboratorID that has not ended.
func openAssignment(collaboratorID primitive.ObjectID) bson.M {
	return bson.M{"$elemMatch": bson.M{"colaborador": collaboratorID, "dataSaida": nil}}
}

func (r *ProjectRepo) Find(ctx context.Context, filter models.ProjectFilter, page utils.Pagination) ([]models.Project, int64, error) {
	sort := bson.D{{Key: "createdAt", Value: -1}}
	return findPage[models.Project](ctx, r.cb, r.collection, projectQuery(filter), pageOptions(page, sort))
}

func (r *ProjectRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	return findOne[models.Project](ctx, r.cb, r.collection, bson.M{"_id": id}, projectEntity)
}

func (r *ProjectRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	return findAll[models.Project](ctx, r.cb, r.collection, byIDs(ids), options.Find())
}

func (r *ProjectRepo) Insert(ctx context.Context, p *models.Project) error {
	id, err := insertOne(ctx, r.cb, r.collection, p)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *ProjectRepo) Save(ctx context.Context, p *models.Project) error {
	return saveFields(ctx, r.cb, r.collection, p.ID, p, projectEntity, "colaboradores")
}

func (r *ProjectRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.cb, r.collection, id, projectEntity)
}

func (r *ProjectRepo) AddAssignment(ctx context.Context, projectID primitive.ObjectID, a models.Assignment) error {
	a.DataSaida = nil
	filter := bson.M{
		"_id":           projectID,
		"colaboradores": bson.M{"$not": openAssignment(a.Colaborador)},
	}
	update := bson.M{
		"$push": bson.M{"colaboradores": a},
		"$set":  touch(a.DataEntrada),
	}

	res, err := execute(r.cb, func() (*mongo.UpdateResult, error) {
		return r.collection.UpdateOne(ctx, filter, update)
	})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return r.explainMiss(ctx, projectID, models.ErrAlreadyAssigned)
}

func (r *ProjectRepo) CloseAssignment(ctx context.Context, projectID, collaboratorID primitive.ObjectID, at time.Time) error {
	filter := bson.M{
		"_id":           projectID,
		"colaboradores": openAssignment(collaboratorID),
	}
	update := bson.M{"$set": bson.M{
		"colaboradores.$.dataSaida": at,
		"updatedAt":                 at,
	}}

	res, err := execute(r.cb, func() (*mongo.UpdateResult, error) {
		return r.collection.UpdateOne(ctx, filter, update)
	})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return r.explainMiss(ctx, projectID, nil)
}

// explainMiss resolves a conditional update that matched nothing: the
// project is missing, or the condition failed and ifExists is returned.
func (r *ProjectRepo) explainMiss(ctx context.Context, projectID primitive.ObjectID, ifExists error) error {
	n, err := execute(r.cb, func() (int64, error) {
		return r.collection.CountDocuments(ctx, bson.M{"_id": projectID}, options.Count().SetLimit(1))
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return models.NotFound(projectEntity)
	}
	return ifExists
}

type allocation struct {
	Collaborator primitive.ObjectID `bson:"_id"`
	Hours        float64            `bson:"hours"`
}

// allocationPipeline sums horasAlocadas of open assignments per collaborator.
func allocationPipeline(ids []primitive.ObjectID) mongo.Pipeline {
	openMatch := bson.M{"colaboradores.dataSaida": nil}
	var pipeline mongo.Pipeline
	if ids != nil {
		in := bson.M{"$in": ids}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"colaboradores.colaborador": in}}})
		openMatch["colaboradores.colaborador"] = in
	}
	return append(pipeline,
		bson.D{{Key: "$unwind", Value: "$colaboradores"}},
		bson.D{{Key: "$match", Value: openMatch}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$colaboradores.colaborador",
			"hours": bson.M{"$sum": "$colaboradores.horasAlocadas"},
		}}},
	)
}

func (r *ProjectRepo) AllocatedHours(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]float64, error) {
	if ids != nil && len(ids) == 0 {
		return map[primitive.ObjectID]float64{}, nil
	}
	rows, err := execute(r.cb, func() ([]allocation, error) {
		cursor, err := r.collection.Aggregate(ctx, allocationPipeline(ids))
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var rows []allocation
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	hours := make(map[primitive.ObjectID]float64, len(rows))
	for _, row := range rows {
		hours[row.Collaborator] = row.Hours
	}
	return hours, nil
}

func (r *ProjectRepo) StatsByStatus(ctx context.Context) ([]models.StatusStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":                  "$status",
			"count":                bson.M{"$sum": 1},
			"totalHorasEstimadas":  bson.M{"$sum": "$horasEstimadas"},
			"totalHorasRealizadas": bson.M{"$sum": "$horasRealizadas"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	return execute(r.cb, func() ([]models.StatusStats, error) {
		cursor, err := r.collection.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		stats := []models.StatusStats{}
		if err := cursor.All(ctx, &stats); err != nil {
			return nil, err
		}
		return stats, nil
	})
}

func (r *ProjectRepo) Count(ctx context.Context) (int64, error) {
	return execute(r.cb, func() (int64, error) {
		return r.collection.CountDocuments(ctx, bson.M{})
	})
}
