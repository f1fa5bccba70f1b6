package service

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/zenhr/hr-assistant/internal/collaborator"
	"github.com/zenhr/hr-assistant/internal/config"
	"github.com/zenhr/hr-assistant/internal/engine"
	"github.com/zenhr/hr-assistant/internal/repository"
	"github.com/zenhr/hr-assistant/internal/service/conversation"
	"github.com/zenhr/hr-assistant/internal/service/knowledge"
)

// Services 服务集合
type Services struct {
	Conversation *conversation.Service
	Knowledge    *knowledge.Searcher
	Indexer      *knowledge.Indexer

	Config *config.Config
	Repo   *repository.Repositories

	// 对话引擎组件
	ChatModel    einomodel.ChatModel
	Orchestrator *engine.Orchestrator
}

// NewServices 创建所有服务
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	ctx := context.Background()

	// 创建 ChatModel（用于低置信度兜底生成）
	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		log.Printf("Warning: failed to create chat model: %v", err)
	}

	// 创建知识库搜索组件
	searcher, err := knowledge.New(cfg)
	if err != nil {
		log.Printf("Warning: failed to create knowledge searcher: %v", err)
	}
	indexer, err := knowledge.NewIndexer(cfg)
	if err != nil {
		log.Printf("Warning: failed to create knowledge indexer: %v", err)
	}

	// 创建下游协作服务客户端
	clients := collaborator.NewClients(&cfg.Collaborators)

	// 组装对话引擎
	var articleSearcher engine.ArticleSearcher
	if searcher != nil {
		articleSearcher = searcher
	}
	var generator engine.Generator
	if chatModel != nil {
		generator = &einoGenerator{chatModel: chatModel}
	}
	orchestrator := engine.NewOrchestrator(
		engine.NewKnowledgeMatcher(articleSearcher),
		engine.NewTrainableMatcher(&intentStore{repo: repo.Intent}),
		engine.NewDispatcher(clients.Leave, clients.Attendance, clients.Payroll, clients.Employee),
		generator,
	)

	convService := conversation.NewService(
		repo.Conversation,
		orchestrator,
		conversation.NewContextCache(redisClient),
		clients.Employee,
	)

	return &Services{
		Conversation: convService,
		Knowledge:    searcher,
		Indexer:      indexer,
		Config:       cfg,
		Repo:         repo,
		ChatModel:    chatModel,
		Orchestrator: orchestrator,
	}, nil
}

// newChatModel 根据配置创建 ChatModel
func newChatModel(ctx context.Context, cfg *config.Config) (einomodel.ChatModel, error) {
	aiCfg := cfg.AI

	var apiKey, baseURL, modelName string
	switch aiCfg.Provider {
	case "openai":
		apiKey = aiCfg.OpenAI.APIKey
		baseURL = aiCfg.OpenAI.BaseURL
		modelName = aiCfg.OpenAI.Model
	case "deepseek":
		apiKey = aiCfg.DeepSeek.APIKey
		baseURL = aiCfg.DeepSeek.BaseURL
		modelName = aiCfg.DeepSeek.Model
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", aiCfg.Provider)
	}

	if apiKey == "" {
		return nil, fmt.Errorf("api key not configured for provider %s", aiCfg.Provider)
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	temperature := float32(0.7)

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Model:       modelName,
		Temperature: &temperature,
	})
	if err != nil {
		// 返回无类型 nil，接口不得持有类型化 nil 指针
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return cm, nil
}

// einoGenerator 把 eino ChatModel 适配为引擎的生成接口
type einoGenerator struct {
	chatModel einomodel.ChatModel
}

func (g *einoGenerator) Generate(ctx context.Context, system string, turns []engine.GenTurn) (string, error) {
	messages := make([]*schema.Message, 0, len(turns)+1)
	messages = append(messages, &schema.Message{Role: schema.System, Content: system})
	for _, turn := range turns {
		role := schema.User
		if turn.Role == "assistant" {
			role = schema.Assistant
		}
		messages = append(messages, &schema.Message{Role: role, Content: turn.Content})
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	return resp.Content, nil
}

// intentStore 把意图仓储适配为引擎的可训练意图来源
type intentStore struct {
	repo *repository.IntentRepository
}

func (s *intentStore) ListActive(ctx context.Context, tenantID string) ([]*engine.TrainableIntent, error) {
	intents, err := s.repo.ListActive(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list intents: %w", err)
	}

	trainable := make([]*engine.TrainableIntent, 0, len(intents))
	for _, it := range intents {
		if len(it.TrainingPhrases) == 0 {
			continue
		}
		trainable = append(trainable, &engine.TrainableIntent{
			Name:    it.Name,
			Phrases: it.TrainingPhrases,
		})
	}
	return trainable, nil
}
