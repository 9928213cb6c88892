package memory

import (
	"context"

	"cyberlearn-service/internal/domain"
)

// StaticStore serves content from in-memory maps (useful for tests/demos).
// It implements the quiz loader plus the lesson, blog, and achievement
// repositories the services consume.
type StaticStore struct {
	quizzes      map[string]domain.Quiz
	lessons      map[string]domain.Lesson
	blogs        map[string]domain.Blog
	achievements map[string]domain.Achievement
}

func NewStaticStore() *StaticStore {
	return &StaticStore{
		quizzes:      make(map[string]domain.Quiz),
		lessons:      make(map[string]domain.Lesson),
		blogs:        make(map[string]domain.Blog),
		achievements: make(map[string]domain.Achievement),
	}
}

func (s *StaticStore) AddQuiz(quiz domain.Quiz) *StaticStore {
	s.quizzes[quiz.ID] = quiz
	return s
}

func (s *StaticStore) AddLesson(lesson domain.Lesson) *StaticStore {
	s.lessons[lesson.ID] = lesson
	return s
}

func (s *StaticStore) AddBlog(blog domain.Blog) *StaticStore {
	s.blogs[blog.ID] = blog
	return s
}

func (s *StaticStore) AddAchievement(a domain.Achievement) *StaticStore {
	s.achievements[a.ID] = a
	return s
}

func (s *StaticStore) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := s.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *StaticStore) CountQuizzesByCategory(_ context.Context, categoryID string) (int, error) {
	count := 0
	for _, quiz := range s.quizzes {
		if quiz.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (s *StaticStore) GetLesson(_ context.Context, lessonID string) (domain.Lesson, error) {
	if lesson, ok := s.lessons[lessonID]; ok {
		return lesson, nil
	}
	return domain.Lesson{}, domain.ErrLessonNotFound
}

func (s *StaticStore) CountLessonsByCategory(_ context.Context, categoryID string) (int, error) {
	count := 0
	for _, lesson := range s.lessons {
		if lesson.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (s *StaticStore) GetBlog(_ context.Context, blogID string) (domain.Blog, error) {
	if blog, ok := s.blogs[blogID]; ok {
		return blog, nil
	}
	return domain.Blog{}, domain.ErrBlogNotFound
}

func (s *StaticStore) GetAchievement(_ context.Context, achievementID string) (domain.Achievement, error) {
	if a, ok := s.achievements[achievementID]; ok {
		return a, nil
	}
	return domain.Achievement{}, domain.ErrAchievementNotFound
}

func (s *StaticStore) ListAchievementsByCategory(_ context.Context, categoryID string) ([]domain.Achievement, error) {
	var out []domain.Achievement
	for _, a := range s.achievements {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return out, nil
}
