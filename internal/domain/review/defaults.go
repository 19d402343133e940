package review

import "time"

// DefaultSkills is the fixed competency catalog every review is seeded with.
var DefaultSkills = []string{
	"Trabajo en equipo",
	"Liderazgo",
	"Comunicación efectiva",
	"Orientación a resultados",
	"Resolución de problemas",
}

type defaultKPI struct {
	Description string
	Weight      int
}

var defaultKPIs = []defaultKPI{
	{Description: "Cumplimiento de tareas asignadas", Weight: 33},
	{Description: "Calidad del trabajo realizado", Weight: 33},
	{Description: "Cumplimiento de objetivos del departamento", Weight: 34},
}

// DefaultKPIs returns the KPIs a new review starts with, due on the creation day.
func DefaultKPIs(reviewID string, now time.Time) []KPI {
	kpis := make([]KPI, len(defaultKPIs))
	for i, d := range defaultKPIs {
		deadline := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		zero := 0
		kpis[i] = KPI{
			ReviewID:             reviewID,
			Description:          d.Description,
			Deadline:             &deadline,
			Weight:               d.Weight,
			CompletionPercentage: &zero,
			Position:             i,
		}
	}
	return kpis
}

// DefaultSkillEvaluations returns the catalog at level medio.
func DefaultSkillEvaluations(reviewID string) []SkillEvaluation {
	skills := make([]SkillEvaluation, len(DefaultSkills))
	for i, name := range DefaultSkills {
		skills[i] = SkillEvaluation{
			ReviewID:  reviewID,
			SkillName: name,
			Level:     SkillLevelMedium,
		}
	}
	return skills
}

// IsCatalogSkill reports whether name belongs to the competency catalog.
func IsCatalogSkill(name string) bool {
	for _, s := range DefaultSkills {
		if s == name {
			return true
		}
	}
	return false
}
