package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"cyberlearn-service/internal/app"
	"cyberlearn-service/internal/config"
	"cyberlearn-service/internal/domain"
	"cyberlearn-service/internal/infra/memory"
	pgstore "cyberlearn-service/internal/infra/postgres"
	redisinfra "cyberlearn-service/internal/infra/redis"
	"cyberlearn-service/internal/logger"
	"cyberlearn-service/internal/metrics"
	transport "cyberlearn-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the learning platform API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New("api", cfg.Log.Level)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	var bunDB *bun.DB
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		bunDB = bun.NewDB(sqldb, pgdialect.New())
	}

	var (
		loader       memory.QuizLoader
		lessons      app.LessonRepository
		blogs        app.BlogRepository
		achievements app.AchievementRepository
		progressRepo app.ProgressRepository
		commentRepo  app.CommentRepository
	)
	if pool != nil {
		content := pgstore.NewContentLoader(pool)
		loader = content
		lessons = content
		blogs = content
		achievements = content
		progressRepo = pgstore.NewProgressStore(bunDB)
		commentRepo = pgstore.NewCommentStore(bunDB)
	} else {
		log.Warn("postgres not configured, serving built-in demo content")
		static := demoContent()
		loader = static
		lessons = static
		blogs = static
		achievements = static
		progressRepo = memory.NewProgressStore()
		commentRepo = memory.NewCommentStore()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizCache(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizCache(loader, quizTTL)
	}

	progressSvc := app.NewProgressService(progressRepo, lessons, quizRepo, achievements)
	quizSvc := app.NewQuizService(quizRepo, progressSvc)
	commentSvc := app.NewCommentService(commentRepo, blogs)

	m := metrics.New("api")
	handler := transport.NewHandler(quizSvc, progressSvc, commentSvc, achievements, log)
	router := transport.NewRouter(handler, []byte(cfg.Auth.JWTSecret), log, m)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting learning platform API")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// demoContent seeds a minimal content set so the server is usable without a
// database.
func demoContent() *memory.StaticStore {
	questions := []domain.Question{
		{
			ID:           "q1",
			CategoryID:   "cat-social-eng",
			Type:         domain.TypeMCQ,
			Difficulty:   domain.DifficultyBeginner,
			Prompt:       "What is the primary goal of social engineering attacks?",
			Options:      []string{"Damage hardware", "Manipulate people to divulge information", "Install malware", "Break encryption"},
			CorrectIndex: 1,
			Explanation:  "Social engineering manipulates people psychologically to reveal confidential information.",
			Points:       10,
		},
		{
			ID:           "q2",
			CategoryID:   "cat-social-eng",
			Type:         domain.TypeTrueFalse,
			Difficulty:   domain.DifficultyBeginner,
			Prompt:       "Phishing attacks only happen through email.",
			Options:      []string{"True", "False"},
			CorrectIndex: 1,
			Explanation:  "Phishing also occurs through SMS, phone calls, social media, and malicious websites.",
			Points:       5,
		},
		{
			ID:          "q3",
			CategoryID:  "cat-social-eng",
			Type:        domain.TypeFillBlank,
			Difficulty:  domain.DifficultyIntermediate,
			Prompt:      "A _______ attack tricks someone into revealing confidential information by impersonating a trustworthy entity.",
			Answer:      "phishing",
			Explanation: "Phishing impersonates legitimate organizations to steal sensitive information.",
			Points:      15,
		},
	}
	quiz := domain.Quiz{
		ID:           "quiz-social-eng-1",
		Title:        "Social Engineering Basics",
		CategoryID:   "cat-social-eng",
		Difficulty:   domain.DifficultyBeginner,
		Level:        domain.LevelCategory,
		Questions:    questions,
		TimeLimit:    15,
		PassingScore: 70,
	}
	quiz.TotalPoints = quiz.SumPoints()

	return memory.NewStaticStore().
		AddQuiz(quiz).
		AddLesson(domain.Lesson{
			ID:         "lesson-phishing-101",
			Title:      "Recognizing Phishing",
			CategoryID: "cat-social-eng",
			Content:    "How to spot a phishing attempt before you click.",
		}).
		AddBlog(domain.Blog{ID: "blog-welcome", Title: "Welcome to the platform"}).
		AddAchievement(domain.Achievement{
			ID:         "ach-social-eng-master",
			Title:      "Social Engineering Master",
			CategoryID: "cat-social-eng",
			Points:     50,
			BadgeIcon:  "shield",
		})
}
