package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/skill"
	"taskhub/pkg/metrics"
)

type SkillHandler struct {
	logger *zap.Logger
}

func NewSkillHandler(logger *zap.Logger) *SkillHandler {
	return &SkillHandler{logger: logger}
}

type domainCatalogue struct {
	Domain   string   `json:"domain"`
	Symptoms []string `json:"symptoms"`
}

// ListSkills describes the available skills and the lookup keys they accept.
func (h *SkillHandler) ListSkills(c *gin.Context) {
	domains := []domainCatalogue{}
	for _, d := range skill.Domains() {
		symptoms, _ := skill.SymptomsFor(d)
		domains = append(domains, domainCatalogue{Domain: d, Symptoms: symptoms})
	}
	c.JSON(http.StatusOK, gin.H{
		"skills":           skill.Kinds(),
		"runbook_domains":  domains,
		"fcr_change_types": skill.ChangeTypes(),
	})
}

// RunSkill dispatches the JSON body to a skill without touching any task.
// An empty body counts as an empty input object.
func (h *SkillHandler) RunSkill(c *gin.Context) {
	kind := skill.Kind(c.Param("skill_type"))

	input := map[string]any{}
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("RunSkill: invalid body", zap.String("skill_type", kind.String()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	start := time.Now()
	env, err := skill.Execute(kind, input)
	if kind.Valid() {
		metrics.RecordSkillExecution(kind.String(), skill.Outcome(err), time.Since(start))
	}
	if err != nil {
		respondError(c, h.logger, "RunSkill", err)
		return
	}
	c.JSON(http.StatusOK, env)
}
