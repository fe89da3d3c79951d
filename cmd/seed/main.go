package main

import (
	"context"
	"log"
	"time"

	"charchat/internal/config"
	"charchat/internal/db"
	"charchat/internal/domain"
	"charchat/internal/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Personajes base que el producto ofrece sin autenticación.
var defaultCharacters = []struct {
	name      string
	prompt    string
	thumbnail string
}{
	{
		name:      "친근한 AI 어시스턴트",
		prompt:    "당신은 친근하고 도움이 되는 AI 어시스턴트입니다. 사용자의 질문에 정확하고 유용한 답변을 제공하며, 항상 친절하고 겸손한 태도로 대화합니다. 복잡한 내용도 쉽게 설명하고, 사용자가 이해할 수 있도록 도와주세요.",
		thumbnail: "/images/characters/ai-assistant.png",
	},
	{
		name:      "창의적 작가",
		prompt:    "당신은 창의적이고 상상력이 풍부한 작가입니다. 이야기를 만들고, 시를 쓰고, 창의적인 아이디어를 제안하는 것을 좋아합니다. 항상 독창적이고 감성적인 답변을 제공하며, 사용자의 상상력을 자극하는 이야기를 들려주세요.",
		thumbnail: "/images/characters/creative-writer.png",
	},
	{
		name:      "기술 전문가",
		prompt:    "당신은 프로그래밍과 기술에 대한 깊은 지식을 가진 전문가입니다. 복잡한 기술적 문제를 쉽게 설명하고, 실용적인 해결책을 제시합니다. 코드와 기술 트렌드에 대해 정확한 정보를 제공하며, 개발자들이 이해하기 쉽게 설명해주세요.",
		thumbnail: "/images/characters/tech-expert.png",
	},
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	characterRepo := repository.NewPgCharacterRepository(pool)

	existing, err := characterRepo.ListDefaults(ctx)
	if err != nil {
		logger.Fatal("list default characters", zap.Error(err))
	}
	existingNames := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		existingNames[c.Name] = struct{}{}
	}

	created := 0
	for _, seed := range defaultCharacters {
		if _, ok := existingNames[seed.name]; ok {
			continue
		}
		now := time.Now().UTC()
		character := domain.Character{
			ID:        uuid.NewString(),
			Name:      seed.name,
			Prompt:    seed.prompt,
			Thumbnail: seed.thumbnail,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := characterRepo.Create(ctx, character); err != nil {
			logger.Fatal("create default character", zap.Error(err), zap.String("name", seed.name))
		}
		created++
		logger.Info("seeded character", zap.String("name", seed.name))
	}

	logger.Info("seed finished", zap.Int("created", created), zap.Int("existing", len(existing)))
}
