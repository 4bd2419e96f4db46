// Package seed loads the demonstration collaborators and projects.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/services"
)

type Result struct {
	Collaborators int
	Projects      int
}

func collaborators() []*models.Collaborator {
	entries := []struct {
		name, email, badge string
		role               models.CollaboratorRole
		skills             []string
	}{
		{"Ana Silva Santos", "ana.silva@mesatech.com", "MT001", models.RoleProjectManager, []string{"Gestão de Projetos", "Scrum", "Kanban"}},
		{"Carlos Oliveira", "carlos.oliveira@mesatech.com", "MT002", models.RoleDeveloper, []string{"JavaScript", "React", "Node.js"}},
		{"Maria Fernanda Costa", "maria.costa@mesatech.com", "MT003", models.RoleDesigner, []string{"UI/UX", "Figma", "Adobe XD"}},
		{"João Pedro Almeida", "joao.almeida@mesatech.com", "MT004", models.RoleAnalyst, []string{"Análise de Requisitos", "SQL", "Power BI"}},
		{"Lucia Rodrigues", "lucia.rodrigues@mesatech.com", "MT005", models.RoleQA, []string{"Testes Automatizados", "Selenium", "Jest"}},
	}

	out := make([]*models.Collaborator, 0, len(entries))
	for _, e := range entries {
		c := models.NewCollaborator()
		c.NomeCompleto = e.name
		c.Email = e.email
		c.Matricula = e.badge
		c.Cargo = e.role
		c.Skills = e.skills
		out = append(out, c)
	}
	return out
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func projects(ids []models.CollaboratorView) []*models.Project {
	assign := func(i int, role string, hours float64) models.Assignment {
		return models.Assignment{Colaborador: ids[i].ID, Funcao: role, HorasAlocadas: hours}
	}

	portal := models.NewProject()
	portal.Nome = "Sistema de Gestão MesaTech"
	portal.Descricao = "Desenvolvimento do sistema interno de gestão de projetos"
	portal.Cliente = "MesaTech"
	portal.DataInicio, portal.DataTermino = date("2024-01-15"), date("2024-06-30")
	portal.HorasEstimadas, portal.HorasRealizadas = 500, 200
	portal.Status, portal.Prioridade = models.ProjectInProgress, models.PriorityHigh
	portal.Cor = "#3B82F6"
	portal.Colaboradores = []models.Assignment{assign(0, "Gerente", 10), assign(1, "Desenvolvedor", 20)}

	mobile := models.NewProject()
	mobile.Nome = "App Mobile Cliente XYZ"
	mobile.Descricao = "Aplicativo mobile para o cliente XYZ"
	mobile.Cliente = "XYZ Corp"
	mobile.DataInicio, mobile.DataTermino = date("2024-02-01"), date("2024-08-31")
	mobile.HorasEstimadas, mobile.HorasRealizadas = 800, 100
	mobile.Status, mobile.Prioridade = models.ProjectInProgress, models.PriorityMedium
	mobile.Cor = "#10B981"
	mobile.Colaboradores = []models.Assignment{assign(2, "Designer", 15), assign(3, "Analista", 10)}

	shop := models.NewProject()
	shop.Nome = "Portal E-commerce ABC"
	shop.Descricao = "Plataforma de e-commerce para ABC Store"
	shop.Cliente = "ABC Store"
	shop.DataInicio, shop.DataTermino = date("2024-03-01"), date("2024-12-31")
	shop.HorasEstimadas, shop.HorasRealizadas = 1200, 50
	shop.Status, shop.Prioridade = models.ProjectPlanning, models.PriorityLow
	shop.Cor = "#F59E0B"

	return []*models.Project{portal, mobile, shop}
}

// Run replaces the collaborators, projects and tasks in store with the
// demonstration data.
func Run(ctx context.Context, store *repositories.Store) (Result, error) {
	if err := store.Clear(ctx); err != nil {
		return Result{}, err
	}
	logging.Logger.Info("Event ID: SEED_CLEARED, Description: Previous data removed")

	collaboratorService := services.NewCollaboratorService(store)
	projectService := services.NewProjectService(store)

	var created []models.CollaboratorView
	for _, c := range collaborators() {
		view, err := collaboratorService.Create(ctx, c, nil)
		if err != nil {
			return Result{}, fmt.Errorf("seed collaborator %s: %w", c.Email, err)
		}
		created = append(created, view)
	}
	logging.Logger.Infof("Event ID: SEED_COLLABORATORS, Description: %d collaborators created", len(created))

	list := projects(created)
	for _, p := range list {
		if _, err := projectService.Create(ctx, p, nil); err != nil {
			return Result{}, fmt.Errorf("seed project %s: %w", p.Nome, err)
		}
	}
	logging.Logger.Infof("Event ID: SEED_PROJECTS, Description: %d projects created", len(list))

	return Result{Collaborators: len(created), Projects: len(list)}, nil
}
