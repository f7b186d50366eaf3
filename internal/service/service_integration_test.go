package service

import (
	"context"
	"errors"
	"examroom_backend/internal/config"
	"examroom_backend/internal/model"
	"examroom_backend/internal/repository"
	"examroom_backend/internal/util"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 集成测试需要真实 MySQL:
//
//	EXAMROOM_INTEGRATION=1 EXAMROOM_TEST_DSN="root:pass@tcp(127.0.0.1:3306)/examroom_test?charset=utf8mb4&parseTime=true&loc=Local" go test ./internal/service/
func setupIntegration(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("EXAMROOM_INTEGRATION") != "1" {
		t.Skip("set EXAMROOM_INTEGRATION=1 to run integration tests")
	}
	dsn := os.Getenv("EXAMROOM_TEST_DSN")
	if dsn == "" {
		t.Skip("EXAMROOM_TEST_DSN is not set")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{}, &model.Package{}, &model.Exam{},
		&model.Participant{}, &model.Question{}, &model.Answer{},
	); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	for _, table := range []string{"answers", "questions", "participants", "exams", "users", "packages"} {
		db.Exec("DELETE FROM " + table)
	}

	return db
}

type fixture struct {
	db             *gorm.DB
	packageSvc     *PackageService
	participantSvc *ParticipantService
	examSvc        *ExamService
	questionSvc    *QuestionService
	answerSvc      *AnswerService
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	examRepo := repository.NewExamRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	packageRepo := repository.NewPackageRepository(db)

	packageSvc := NewPackageService(packageRepo, userRepo, nil)
	participantSvc := NewParticipantService(examRepo, participantRepo, userRepo, answerRepo,
		packageSvc, db, 15*time.Minute)
	examSvc := NewExamService(examRepo, participantRepo, questionRepo, answerRepo,
		participantSvc, packageSvc, db, "Example question")
	storage := &StorageService{Provider: &LocalStorageProvider{
		Config: &config.StorageConfig{LocalPath: t.TempDir()},
	}}
	questionSvc := NewQuestionService(questionRepo, examRepo, participantSvc, packageSvc, storage, db)
	answerSvc := NewAnswerService(answerRepo, questionRepo, participantRepo, userRepo, examRepo,
		participantSvc, db)

	return &fixture{
		db:             db,
		packageSvc:     packageSvc,
		participantSvc: participantSvc,
		examSvc:        examSvc,
		questionSvc:    questionSvc,
		answerSvc:      answerSvc,
	}
}

func (f *fixture) seedUser(t *testing.T, email, packageID string, quota int) *model.User {
	t.Helper()
	user := &model.User{
		Name:      "Test User",
		Email:     email,
		Password:  "x",
		Quota:     quota,
		PackageID: packageID,
	}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *fixture) seedPackage(t *testing.T, id string, maxParticipant, maxQuestion int) {
	t.Helper()
	if err := f.db.Create(&model.Package{
		ID:             id,
		Label:          id,
		MaxParticipant: maxParticipant,
		MaxQuestion:    maxQuestion,
	}).Error; err != nil {
		t.Fatalf("seed package: %v", err)
	}
}

func (f *fixture) createExam(t *testing.T, owner *model.User) *model.Exam {
	t.Helper()
	exam, err := f.examSvc.Create(owner.ID, CreateExamRequest{
		Title:    "Midterm",
		StartAt:  time.Now().Add(-time.Hour),
		FinishAt: time.Now().Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	return exam
}

func TestIntegrationJoinCapacity(t *testing.T) {
	db := setupIntegration(t)
	f := newFixture(t, db)
	ctx := context.Background()

	// 容量1，创建者不占名额
	f.seedPackage(t, "solo-seat", 1, 10)
	owner := f.seedUser(t, "owner-cap@test.dev", "solo-seat", 1)
	u1 := f.seedUser(t, "u1-cap@test.dev", "", 0)
	u2 := f.seedUser(t, "u2-cap@test.dev", "", 0)
	exam := f.createExam(t, owner)

	if err := f.participantSvc.Join(ctx, exam.ID, u1.ID); err != nil {
		t.Fatalf("first join should succeed: %v", err)
	}
	if err := f.participantSvc.Join(ctx, exam.ID, u2.ID); !errors.Is(err, util.ErrCapacityExceeded) {
		t.Fatalf("second join = %v, want ErrCapacityExceeded", err)
	}
	if err := f.participantSvc.Join(ctx, exam.ID, u1.ID); !errors.Is(err, util.ErrAlreadyJoined) {
		t.Fatalf("repeated join = %v, want ErrAlreadyJoined", err)
	}

	// 拉黑后释放名额
	blocked := true
	if _, err := f.participantSvc.Update(exam.ID, owner.ID, u1.ID,
		UpdateParticipantRequest{Blocked: &blocked}); err != nil {
		t.Fatal(err)
	}
	if err := f.participantSvc.Join(ctx, exam.ID, u2.ID); err != nil {
		t.Fatalf("join after freeing a seat should succeed: %v", err)
	}
	if err := f.participantSvc.Join(ctx, exam.ID, u1.ID); !errors.Is(err, util.ErrUserBlocked) {
		t.Fatalf("blocked rejoin = %v, want ErrUserBlocked", err)
	}
}

func TestIntegrationExamCreateTransaction(t *testing.T) {
	db := setupIntegration(t)
	f := newFixture(t, db)

	f.seedPackage(t, "solo", 5, 10)
	owner := f.seedUser(t, "owner-tx@test.dev", "solo", 1)
	exam := f.createExam(t, owner)

	var refreshed model.User
	if err := db.First(&refreshed, owner.ID).Error; err != nil {
		t.Fatal(err)
	}
	if refreshed.Quota != 0 {
		t.Errorf("quota = %d, want 0 after create", refreshed.Quota)
	}

	role, p, err := f.participantSvc.ResolveRole(exam.ID, owner.ID)
	if err != nil || p == nil {
		t.Fatalf("owner should be a participant: %v", err)
	}
	if role != ExamRoleOwner {
		t.Errorf("role = %v, want owner", role)
	}

	var questions []model.Question
	db.Where("exam_id = ?", exam.ID).Find(&questions)
	if len(questions) != 1 || questions[0].Order != 1 {
		t.Errorf("expected one seed question at order 1, got %d", len(questions))
	}

	// 额度耗尽后再次创建失败
	if _, err := f.examSvc.Create(owner.ID, CreateExamRequest{
		Title:    "Second",
		StartAt:  time.Now(),
		FinishAt: time.Now().Add(time.Hour),
	}); !errors.Is(err, util.ErrQuotaExceeded) {
		t.Errorf("create without quota = %v, want ErrQuotaExceeded", err)
	}
}

func TestIntegrationQuestionOrderDense(t *testing.T) {
	db := setupIntegration(t)
	f := newFixture(t, db)
	ctx := context.Background()

	f.seedPackage(t, "quiz", 5, 10)
	owner := f.seedUser(t, "owner-q@test.dev", "quiz", 1)
	exam := f.createExam(t, owner)

	req := func(desc string) QuestionRequest {
		return QuestionRequest{
			Description:   desc,
			Options:       map[string]string{"a": "A", "b": "B"},
			CorrectOption: "a",
		}
	}

	q2, err := f.questionSvc.Add(ctx, exam.ID, owner.ID, req("second"))
	if err != nil {
		t.Fatal(err)
	}
	q3, err := f.questionSvc.Add(ctx, exam.ID, owner.ID, req("third"))
	if err != nil {
		t.Fatal(err)
	}
	if q2.Order != 2 || q3.Order != 3 {
		t.Fatalf("orders = %d,%d, want 2,3", q2.Order, q3.Order)
	}

	// 删除中间题目，后续序号回补
	if err := f.questionSvc.Delete(ctx, exam.ID, q2.ID, owner.ID); err != nil {
		t.Fatal(err)
	}
	views, err := f.questionSvc.List(ctx, exam.ID, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 2 {
		t.Fatalf("question count = %d, want 2", len(views))
	}
	for i, v := range views {
		if v.Order != i+1 {
			t.Errorf("order[%d] = %d, want %d", i, v.Order, i+1)
		}
	}
}

func TestIntegrationConcurrentQuestionDelete(t *testing.T) {
	db := setupIntegration(t)
	f := newFixture(t, db)
	ctx := context.Background()

	f.seedPackage(t, "dense", 5, 10)
	owner := f.seedUser(t, "owner-cd@test.dev", "dense", 1)
	exam := f.createExam(t, owner)

	ids := make([]string, 0, 4)
	for _, desc := range []string{"second", "third", "fourth", "fifth"} {
		v, err := f.questionSvc.Add(ctx, exam.ID, owner.ID, QuestionRequest{
			Description:   desc,
			Options:       map[string]string{"a": "A", "b": "B"},
			CorrectOption: "a",
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, v.ID)
	}

	// 并发删除中段两题，序号回补互相可见，不留空洞
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, id := range []string{ids[0], ids[2]} {
		wg.Add(1)
		go func(qid string) {
			defer wg.Done()
			errs <- f.questionSvc.Delete(ctx, exam.ID, qid, owner.ID)
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	views, err := f.questionSvc.List(ctx, exam.ID, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 3 {
		t.Fatalf("question count = %d, want 3", len(views))
	}
	for i, v := range views {
		if v.Order != i+1 {
			t.Errorf("order[%d] = %d, want %d", i, v.Order, i+1)
		}
	}
}

func TestIntegrationOwnerImmutable(t *testing.T) {
	db := setupIntegration(t)
	f := newFixture(t, db)
	ctx := context.Background()

	f.seedPackage(t, "team", 5, 10)
	owner := f.seedUser(t, "owner-im@test.dev", "team", 1)
	student := f.seedUser(t, "student-im@test.dev", "", 0)
	exam := f.createExam(t, owner)

	if err := f.participantSvc.Join(ctx, exam.ID, student.ID); err != nil {
		t.Fatal(err)
	}

	blocked := true
	if _, err := f.participantSvc.Update(exam.ID, owner.ID, owner.ID,
		UpdateParticipantRequest{Blocked: &blocked}); !errors.Is(err, util.ErrOwnerImmutable) {
		t.Errorf("block owner = %v, want ErrOwnerImmutable", err)
	}
	if err := f.participantSvc.Remove(exam.ID, owner.ID, owner.ID); !errors.Is(err, util.ErrOwnerImmutable) {
		t.Errorf("remove owner = %v, want ErrOwnerImmutable", err)
	}

	// 学生可以被拉黑，拉黑后降级为 none
	if _, err := f.participantSvc.Update(exam.ID, owner.ID, student.ID,
		UpdateParticipantRequest{Blocked: &blocked}); err != nil {
		t.Fatal(err)
	}
	role, p, err := f.participantSvc.ResolveRole(exam.ID, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if role != ExamRoleNone || p == nil || !p.IsBlocked {
		t.Errorf("blocked student role = %v, want none with blocked record", role)
	}
}

func TestIntegrationAnswerMerge(t *testing.T) {
	db := setupIntegration(t)
	f := newFixture(t, db)
	ctx := context.Background()

	f.seedPackage(t, "merge", 5, 10)
	owner := f.seedUser(t, "owner-an@test.dev", "merge", 1)
	student := f.seedUser(t, "student-an@test.dev", "", 0)
	exam := f.createExam(t, owner)
	if err := f.participantSvc.Join(ctx, exam.ID, student.ID); err != nil {
		t.Fatal(err)
	}

	submit := func(items ...SubmitAnswerItem) error {
		return f.answerSvc.Submit(exam.ID, student.ID, SubmitAnswerRequest{Data: items})
	}

	if err := submit(SubmitAnswerItem{QuestionID: "q1", Response: "a", Summary: `{"spent":10}`}); err != nil {
		t.Fatal(err)
	}
	if err := submit(SubmitAnswerItem{QuestionID: "q2", Response: "b"}); err != nil {
		t.Fatal(err)
	}
	// 覆盖 q1，两次提交结果一致
	for i := 0; i < 2; i++ {
		if err := submit(SubmitAnswerItem{QuestionID: "q1", Response: "c"}); err != nil {
			t.Fatal(err)
		}
	}

	view, err := f.answerSvc.Get(exam.ID, student.ID, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Data) != 2 {
		t.Fatalf("answer count = %d, want 2", len(view.Data))
	}
	if view.Data[0].QuestionID != "q1" || view.Data[0].Response != "c" {
		t.Errorf("q1 = %+v, want response c at original position", view.Data[0])
	}
	if view.Data[1].QuestionID != "q2" {
		t.Errorf("q2 lost its position: %+v", view.Data[1])
	}
}

func TestIntegrationConcurrentFirstSubmit(t *testing.T) {
	db := setupIntegration(t)
	f := newFixture(t, db)
	ctx := context.Background()

	f.seedPackage(t, "first", 5, 10)
	owner := f.seedUser(t, "owner-cf@test.dev", "first", 1)
	student := f.seedUser(t, "student-cf@test.dev", "", 0)
	exam := f.createExam(t, owner)
	if err := f.participantSvc.Join(ctx, exam.ID, student.ID); err != nil {
		t.Fatal(err)
	}

	// 同一用户的两次首提并发到达，唯一索引冲突方重试合并而非报错
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, q := range []string{"q1", "q2"} {
		wg.Add(1)
		go func(qid string) {
			defer wg.Done()
			errs <- f.answerSvc.Submit(exam.ID, student.ID, SubmitAnswerRequest{
				Data: []SubmitAnswerItem{{QuestionID: qid, Response: "a"}},
			})
		}(q)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	view, err := f.answerSvc.Get(exam.ID, student.ID, student.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Data) != 2 {
		t.Fatalf("answer count = %d, want both concurrent first submissions kept", len(view.Data))
	}
}
