package mapper

import (
	"encoding/json"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type QueryLogMapper struct{}

func NewQueryLogMapper() *QueryLogMapper {
	return &QueryLogMapper{}
}

func (m *QueryLogMapper) ToEntity(e *model.QueryLog) *entity.QueryLog {
	if e == nil {
		return nil
	}

	var judgeScore map[string]any
	if len(e.JudgeScore) > 0 {
		_ = json.Unmarshal(e.JudgeScore, &judgeScore)
	}

	var sources []string
	if len(e.Sources) > 0 {
		_ = json.Unmarshal(e.Sources, &sources)
	}

	return &entity.QueryLog{
		Id:             e.Id,
		SessionId:      e.SessionId,
		Query:          e.Query,
		Mode:           e.Mode,
		JudgeScore:     judgeScore,
		Sources:        sources,
		ResponseTimeMs: e.ResponseTimeMs,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *QueryLogMapper) ToModel(e *entity.QueryLog) *model.QueryLog {
	if e == nil {
		return nil
	}

	var judgeScore datatypes.JSON
	if e.JudgeScore != nil {
		if raw, err := json.Marshal(e.JudgeScore); err == nil {
			judgeScore = raw
		}
	}

	var sources datatypes.JSON
	if e.Sources != nil {
		if raw, err := json.Marshal(e.Sources); err == nil {
			sources = raw
		}
	}

	return &model.QueryLog{
		Id:             e.Id,
		SessionId:      e.SessionId,
		Query:          e.Query,
		Mode:           e.Mode,
		JudgeScore:     judgeScore,
		Sources:        sources,
		ResponseTimeMs: e.ResponseTimeMs,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *QueryLogMapper) ToEntities(logs []*model.QueryLog) []*entity.QueryLog {
	entities := make([]*entity.QueryLog, len(logs))
	for i, e := range logs {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
