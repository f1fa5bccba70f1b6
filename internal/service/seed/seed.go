// Package seed 为空租户填充默认意图与知识库文章
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/zenhr/hr-assistant/internal/model"
	"github.com/zenhr/hr-assistant/internal/repository"
	"github.com/zenhr/hr-assistant/internal/service/knowledge"
)

// Service 种子数据服务
type Service struct {
	repo    *repository.Repositories
	indexer *knowledge.Indexer
}

// NewService 创建种子数据服务
func NewService(repo *repository.Repositories, indexer *knowledge.Indexer) *Service {
	return &Service{repo: repo, indexer: indexer}
}

// EnsureTenant 确保租户具备默认数据（已有数据时跳过）
func (s *Service) EnsureTenant(ctx context.Context, tenantID string) error {
	intentCount, err := s.repo.Intent.CountByTenant(tenantID)
	if err != nil {
		return fmt.Errorf("failed to count intents: %w", err)
	}
	if intentCount == 0 {
		if err := s.seedIntents(tenantID); err != nil {
			return err
		}
	}

	articleCount, err := s.repo.Article.CountByTenant(tenantID)
	if err != nil {
		return fmt.Errorf("failed to count articles: %w", err)
	}
	if articleCount == 0 {
		if err := s.seedArticles(ctx, tenantID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seedIntents(tenantID string) error {
	for _, it := range defaultIntents {
		intent := it
		intent.TenantID = tenantID
		if err := s.repo.Intent.Create(&intent); err != nil {
			return fmt.Errorf("failed to seed intent %s: %w", intent.Name, err)
		}
	}
	log.Printf("Seeded %d default intents for tenant %s", len(defaultIntents), tenantID)
	return nil
}

func (s *Service) seedArticles(ctx context.Context, tenantID string) error {
	for _, a := range defaultArticles {
		article := a
		article.TenantID = tenantID
		if err := s.repo.Article.Create(&article); err != nil {
			return fmt.Errorf("failed to seed article %s: %w", article.Title, err)
		}
		if s.indexer != nil {
			if err := s.indexer.IndexArticle(ctx, &article); err != nil {
				log.Printf("Warning: failed to index article %s: %v", article.Title, err)
			}
		}
	}
	log.Printf("Seeded %d default articles for tenant %s", len(defaultArticles), tenantID)
	return nil
}

var defaultIntents = []model.Intent{
	{
		Name:     "policy.remote_work",
		Category: "policy",
		TrainingPhrases: model.StringList{
			"can i work from home",
			"what is the remote work policy",
			"how many days can i work remotely",
		},
		Responses: model.StringList{
			"Our remote work policy allows up to three days per week from home, subject to manager approval.",
		},
		Priority: 10,
		IsActive: true,
	},
	{
		Name:     "policy.overtime",
		Category: "policy",
		TrainingPhrases: model.StringList{
			"how is overtime paid",
			"what is the overtime policy",
			"do i get paid for extra hours",
		},
		Responses: model.StringList{
			"Overtime is compensated at 1.5x your hourly rate for hours beyond the standard work week.",
		},
		Priority: 10,
		IsActive: true,
	},
	{
		Name:     "benefits.insurance",
		Category: "benefits",
		TrainingPhrases: model.StringList{
			"what health insurance do we have",
			"tell me about medical coverage",
			"how do i add my family to insurance",
		},
		Responses: model.StringList{
			"Your health plan covers you and eligible dependents. You can manage enrollments from the benefits portal.",
		},
		Priority: 10,
		IsActive: true,
	},
}

var defaultArticles = []model.KnowledgeArticle{
	{
		Intent:  "leave.policy",
		Title:   "Annual Leave Policy",
		Content: "Full-time employees accrue annual leave each month. Unused days carry over up to a limit set by local regulations. Requests should be submitted at least three working days in advance.",
		Keywords: model.StringList{
			"annual leave", "vacation", "carry over", "accrual",
		},
		Variations: model.StringList{
			"how many vacation days do i get",
			"does unused leave carry over",
		},
		Status: model.ArticlePublished,
	},
	{
		Intent:  "payroll.schedule",
		Title:   "Payroll Schedule",
		Content: "Salaries are paid on the 25th of each month. If the 25th falls on a weekend or public holiday, payment is made on the preceding working day.",
		Keywords: model.StringList{
			"salary date", "pay day", "payroll schedule",
		},
		Variations: model.StringList{
			"when do we get paid",
			"what day is pay day",
		},
		Status: model.ArticlePublished,
	},
	{
		Intent:  "attendance.policy",
		Title:   "Attendance and Working Hours",
		Content: "Core working hours are 10:00 to 16:00. Employees record check-in and check-out through the assistant or the attendance portal. Missed punches can be regularized within five days.",
		Keywords: model.StringList{
			"working hours", "check in", "check out", "attendance",
		},
		Variations: model.StringList{
			"what are the office hours",
			"i forgot to punch in",
		},
		Status: model.ArticlePublished,
	},
}
