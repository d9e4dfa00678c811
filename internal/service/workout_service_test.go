package service

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/external"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memory"
	"alcyxob/workout-tracker/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: make(map[string][]byte)}
}

func (f *fakeFiles) Put(_ context.Context, key, _ string, r io.Reader, _ int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeFiles) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeFiles) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "/uploads/" + key, nil
}

func (f *fakeFiles) Backend() string { return "fake" }

func (f *fakeFiles) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type fakeParser struct {
	payload string
	err     error
}

func (p *fakeParser) Parse(_ context.Context, _ string) (domain.PlanData, json.RawMessage, error) {
	if p.err != nil {
		return domain.PlanData{}, nil, p.err
	}
	raw := json.RawMessage(p.payload)
	plan, err := domain.DecodePlanData(raw)
	return plan, raw, err
}

type fakeTrimmer struct {
	calls []string
	err   error
}

func (t *fakeTrimmer) Trim(_ context.Context, in, out string, tIn, tOut float64) error {
	t.calls = append(t.calls, fmt.Sprintf("%s %v %v", filepath.Base(in), tIn, tOut))
	if t.err != nil {
		return t.err
	}
	return os.WriteFile(out, []byte("trimmed"), 0o644)
}

type fakeNotifier struct {
	sent []external.CoachPayload
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, p external.CoachPayload) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, p)
	return nil
}

// --- helpers ---

const planPayload = `{"pages":[
	{"pageNumber":1,"title":"Day 1","exercises":[{"id":"ex1","name":"Squat","setsReps":"3x8","weeks":{}}]},
	{"pageNumber":2,"title":"Day 2","exercises":[{"id":"ex2","name":"Bench","setsReps":"4x6","weeks":{}},{"id":"ex3","name":"Row","setsReps":"3x10","weeks":{}}]}
]}`

type fixture struct {
	svc      *workoutService
	store    repository.SessionStore
	files    *fakeFiles
	parser   *fakeParser
	trimmer  *fakeTrimmer
	notifier *fakeNotifier
	tokens   *SessionTokens
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		files:    newFakeFiles(),
		parser:   &fakeParser{payload: planPayload},
		trimmer:  &fakeTrimmer{},
		notifier: &fakeNotifier{},
		tokens:   NewSessionTokens("test-secret", time.Hour),
	}
	f.svc = NewWorkoutService(f.store, f.files, f.parser, f.trimmer, f.notifier, f.tokens).(*workoutService)
	f.svc.tempDir = t.TempDir()
	clock := time.UnixMilli(1700000000000)
	f.svc.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return f
}

// minimalPDF builds a valid single-page document.
func minimalPDF() []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func (f *fixture) uploadPlan(t *testing.T) *PlanResult {
	t.Helper()
	res, err := f.svc.UploadPlan(context.Background(), PlanUpload{
		Path:         writeTemp(t, "upload.pdf", minimalPDF()),
		OriginalName: "My Plan.pdf",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) selectDay2(t *testing.T, sessionID int64) *domain.WorkoutSession {
	t.Helper()
	session, err := f.svc.SelectDay(context.Background(), sessionID, "day-2", nil)
	require.NoError(t, err)
	return session
}

func videoInput(sessionID int64, exerciseID, weekID string) VideoUploadInput {
	return VideoUploadInput{
		SessionID:    sessionID,
		ExerciseID:   exerciseID,
		WeekID:       weekID,
		OriginalName: "set 1.mp4",
		MimeType:     "video/mp4",
		Size:         5,
		Content:      strings.NewReader("video"),
	}
}

// --- tests ---

func TestUploadPlan(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)

	assert.Equal(t, "My Plan.pdf", res.Session.PDFFilename)
	assert.Empty(t, res.Session.Exercises)
	assert.Len(t, res.Pages, 2)
	assert.True(t, f.files.has(res.StoredAs))
	assert.True(t, strings.HasSuffix(res.StoredAs, "_My_Plan.pdf"))

	id, err := f.tokens.Parse(res.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, id)

	current, err := f.store.GetCurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, current.ID)
}

func TestUploadPlanLeavesStrictnessToParser(t *testing.T) {
	cases := map[string][]byte{
		"pdf 2.0 header":    bytes.Replace(minimalPDF(), []byte("%PDF-1.4"), []byte("%PDF-2.0"), 1),
		"padding after eof": append(minimalPDF(), bytes.Repeat([]byte{0}, 256)...),
		"garbage after eof": append(minimalPDF(), []byte("\n%%trailing producer junk")...),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			res, err := f.svc.UploadPlan(context.Background(), PlanUpload{
				Path:         writeTemp(t, "plan.pdf", content),
				OriginalName: "plan.pdf",
			})
			require.NoError(t, err)
			assert.Len(t, res.Pages, 2)
			assert.True(t, f.files.has(res.StoredAs))
		})
	}
}

func TestUploadPlanFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("not a pdf", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UploadPlan(ctx, PlanUpload{Path: writeTemp(t, "x.pdf", []byte("hello")), OriginalName: "x.pdf"})
		assert.ErrorIs(t, err, ErrInvalidFile)
	})

	t.Run("no pages", func(t *testing.T) {
		f := newFixture(t)
		f.parser.payload = `{"pages":[]}`
		_, err := f.svc.UploadPlan(ctx, PlanUpload{Path: writeTemp(t, "x.pdf", minimalPDF()), OriginalName: "x.pdf"})
		assert.ErrorIs(t, err, ErrNoPlanPages)
		assert.Empty(t, f.files.objects)
	})

	t.Run("parser failure", func(t *testing.T) {
		f := newFixture(t)
		f.parser.err = &external.ProcessError{Command: "python3 parser.py", ExitCode: 1}
		_, err := f.svc.UploadPlan(ctx, PlanUpload{Path: writeTemp(t, "x.pdf", minimalPDF()), OriginalName: "x.pdf"})
		var procErr *external.ProcessError
		assert.ErrorAs(t, err, &procErr)
	})

	t.Run("token failure", func(t *testing.T) {
		f := newFixture(t)
		previous := f.uploadPlan(t)
		f.tokens.method = jwt.SigningMethodRS256 // wrong key type for the HMAC secret

		_, err := f.svc.UploadPlan(ctx, PlanUpload{Path: writeTemp(t, "x.pdf", minimalPDF()), OriginalName: "x.pdf"})
		assert.ErrorIs(t, err, ErrTokenGeneration)
		assert.Len(t, f.files.objects, 1, "only the earlier plan is kept")
		assert.True(t, f.files.has(previous.StoredAs))

		_, err = f.store.GetWorkoutSession(ctx, previous.Session.ID+1)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		current, err := f.store.GetCurrentSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, previous.Session.ID, current.ID)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UploadPlan(ctx, PlanUpload{})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestSelectDay(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)

	session := f.selectDay2(t, res.Session.ID)
	require.NotNil(t, session.SelectedDay)
	assert.Equal(t, "day-2", *session.SelectedDay)
	require.Len(t, session.Exercises, 2)
	assert.Equal(t, "Bench", session.Exercises[0].Name)
	assert.JSONEq(t, planPayload, string(session.WorkoutData), "plan data is never touched")
}

func TestSelectDayFallsBackToCurrentSession(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)

	session, err := f.svc.SelectDay(context.Background(), 9999, "day-1", nil)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, session.ID)
	assert.Len(t, session.Exercises, 1)
}

func TestSelectDayUnknownPage(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)
	ctx := context.Background()

	session, err := f.svc.SelectDay(ctx, res.Session.ID, "day-7", nil)
	require.NoError(t, err)
	assert.Empty(t, session.Exercises)

	fallback := []domain.Exercise{{ID: "c1", Name: "Custom", Weeks: map[string]domain.WeekSlot{}}}
	session, err = f.svc.SelectDay(ctx, res.Session.ID, "day-7", fallback)
	require.NoError(t, err)
	require.Len(t, session.Exercises, 1)
	assert.Equal(t, "Custom", session.Exercises[0].Name)

	_, err = f.svc.SelectDay(ctx, res.Session.ID, "seven", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSelectDayWithoutSessions(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SelectDay(context.Background(), 1, "day-1", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateExercise(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)
	f.selectDay2(t, res.Session.ID)
	ctx := context.Background()

	rpe := 8.0
	weight := "80kg"
	_, err := f.svc.UpdateExercise(ctx, ExerciseUpdate{SessionID: res.Session.ID, ExerciseID: "ex2", WeekID: "week_1", RPE: &rpe})
	require.NoError(t, err)
	updated, err := f.svc.UpdateExercise(ctx, ExerciseUpdate{SessionID: res.Session.ID, ExerciseID: "ex2", WeekID: "week_1", Weight: &weight})
	require.NoError(t, err)

	slot := updated.Exercises[0].Weeks["week_1"]
	require.NotNil(t, slot.RPE)
	require.NotNil(t, slot.Weight)
	assert.Equal(t, 8.0, *slot.RPE, "weight update keeps the rpe")
	assert.Equal(t, "80kg", *slot.Weight)
	assert.Empty(t, updated.Exercises[1].Weeks, "sibling exercise untouched")

	notes := "slow eccentric"
	updated, err = f.svc.UpdateExercise(ctx, ExerciseUpdate{SessionID: res.Session.ID, ExerciseID: "ex3", Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "slow eccentric", *updated.Exercises[1].Notes)
}

func TestUpdateExerciseErrors(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)
	f.selectDay2(t, res.Session.ID)
	ctx := context.Background()
	rpe := 7.0
	tooHigh := 11.0

	tests := []struct {
		name string
		in   ExerciseUpdate
		want error
	}{
		{"unknown session", ExerciseUpdate{SessionID: 999, ExerciseID: "ex2", WeekID: "w1", RPE: &rpe}, ErrSessionNotFound},
		{"unknown exercise", ExerciseUpdate{SessionID: res.Session.ID, ExerciseID: "nope", WeekID: "w1", RPE: &rpe}, ErrExerciseNotFound},
		{"missing week", ExerciseUpdate{SessionID: res.Session.ID, ExerciseID: "ex2", RPE: &rpe}, ErrValidationFailed},
		{"rpe out of range", ExerciseUpdate{SessionID: res.Session.ID, ExerciseID: "ex2", WeekID: "w1", RPE: &tooHigh}, ErrValidationFailed},
		{"missing exercise id", ExerciseUpdate{SessionID: res.Session.ID}, ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateExercise(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUploadVideoLinksWeekSlot(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)
	f.selectDay2(t, res.Session.ID)
	ctx := context.Background()

	video, err := f.svc.UploadVideo(ctx, videoInput(res.Session.ID, "ex2", "week_1"))
	require.NoError(t, err)
	assert.Equal(t, "set 1.mp4", video.OriginalName)
	assert.True(t, strings.HasSuffix(video.Filename, "_set_1.mp4"))
	assert.True(t, f.files.has(video.Filename))

	session, err := f.store.GetWorkoutSession(ctx, res.Session.ID)
	require.NoError(t, err)
	ref := session.Exercises[0].Weeks["week_1"].Video
	require.NotNil(t, ref)
	assert.Equal(t, video.ID, ref.ID)

	videos, err := f.svc.ListVideos(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Len(t, videos, 1)
}

func TestUploadVideoErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := videoInput(1, "ex1", "week_1")
	in.MimeType = "application/pdf"
	_, err := f.svc.UploadVideo(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = f.svc.UploadVideo(ctx, videoInput(0, "ex1", "week_1"))
	assert.ErrorIs(t, err, ErrValidationFailed)

	// No such session: the stored file is removed again.
	_, err = f.svc.UploadVideo(ctx, videoInput(42, "ex1", "week_1"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, f.files.objects)

	f.files.putErr = errors.New("disk full")
	_, err = f.svc.UploadVideo(ctx, videoInput(42, "ex1", "week_1"))
	assert.ErrorContains(t, err, "disk full")
}

func TestListVideosAndCurrentSessionWithoutSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	videos, err := f.svc.ListVideos(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)

	session, videos, err := f.svc.CurrentSession(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Nil(t, videos)

	session, _, err = f.svc.CurrentSession(ctx, 77)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestCurrentSessionPrefersExplicitID(t *testing.T) {
	f := newFixture(t)
	first := f.uploadPlan(t)
	second := f.uploadPlan(t)
	ctx := context.Background()

	session, _, err := f.svc.CurrentSession(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, second.Session.ID, session.ID)

	session, videos, err := f.svc.CurrentSession(ctx, first.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Session.ID, session.ID)
	assert.NotNil(t, videos)
}

func TestDeleteVideo(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)
	f.selectDay2(t, res.Session.ID)
	ctx := context.Background()

	video, err := f.svc.UploadVideo(ctx, videoInput(res.Session.ID, "ex2", "week_1"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteVideo(ctx, video.ID))
	assert.False(t, f.files.has(video.Filename))

	session, err := f.store.GetWorkoutSession(ctx, res.Session.ID)
	require.NoError(t, err)
	slot, ok := session.Exercises[0].Weeks["week_1"]
	assert.True(t, ok, "week key survives")
	assert.Nil(t, slot.Video)

	assert.ErrorIs(t, f.svc.DeleteVideo(ctx, video.ID), ErrVideoNotFound)
}

func TestDeleteVideoToleratesMissingFile(t *testing.T) {
	f := newFixture(t)
	res := f.uploadPlan(t)
	ctx := context.Background()

	video, err := f.svc.UploadVideo(ctx, videoInput(res.Session.ID, "ex1", "week_1"))
	require.NoError(t, err)
	require.NoError(t, f.files.Delete(ctx, video.Filename))

	assert.NoError(t, f.svc.DeleteVideo(ctx, video.ID))
}

func TestTrimVideo(t *testing.T) {
	f := newFixture(t)
	input := writeTemp(t, "raw.mp4", []byte("raw"))

	res, err := f.svc.TrimVideo(context.Background(), TrimRequest{InputPath: input, TIn: 1.5, TOut: 4})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Filename, "_trimmed.mp4"))
	assert.False(t, res.Replaced)
	assert.Equal(t, []string{"raw.mp4 1.5 4"}, f.trimmer.calls)
	assert.Equal(t, []byte("trimmed"), f.files.objects[res.Filename])

	entries, err := os.ReadDir(f.svc.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary output removed")
}

func TestTrimVideoReplacesUpload(t *testing.T) {
	f := newFixture(t)
	plan := f.uploadPlan(t)
	f.selectDay2(t, plan.Session.ID)
	ctx := context.Background()

	video, err := f.svc.UploadVideo(ctx, videoInput(plan.Session.ID, "ex2", "week_1"))
	require.NoError(t, err)

	res, err := f.svc.TrimVideo(ctx, TrimRequest{
		InputPath:       writeTemp(t, "raw.mp4", []byte("raw")),
		TIn:             0,
		TOut:            2,
		ReplaceFilename: video.Filename,
		SessionID:       plan.Session.ID,
	})
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.False(t, f.files.has(video.Filename))

	stored, err := f.store.GetVideoUpload(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Filename, stored.Filename)

	session, err := f.store.GetWorkoutSession(ctx, plan.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Filename, session.Exercises[0].Weeks["week_1"].Video.Filename)
}

func TestTrimVideoReplacesUploadOfNonCurrentSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.uploadPlan(t)
	f.selectDay2(t, owner.Session.ID)

	video, err := f.svc.UploadVideo(ctx, videoInput(owner.Session.ID, "ex2", "week_1"))
	require.NoError(t, err)

	other := f.uploadPlan(t)
	f.selectDay2(t, other.Session.ID)
	current, err := f.store.GetCurrentSession(ctx)
	require.NoError(t, err)
	require.Equal(t, other.Session.ID, current.ID)

	res, err := f.svc.TrimVideo(ctx, TrimRequest{
		InputPath:       writeTemp(t, "raw.mp4", []byte("raw")),
		TIn:             0,
		TOut:            2,
		ReplaceFilename: video.Filename,
	})
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.False(t, f.files.has(video.Filename))

	session, err := f.store.GetWorkoutSession(ctx, owner.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Filename, session.Exercises[0].Weeks["week_1"].Video.Filename)

	untouched, err := f.store.GetWorkoutSession(ctx, other.Session.ID)
	require.NoError(t, err)
	assert.Nil(t, untouched.Exercises[0].Weeks["week_1"].Video)
}

func TestTrimVideoReplaceScopedToSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.uploadPlan(t)
	f.selectDay2(t, owner.Session.ID)

	video, err := f.svc.UploadVideo(ctx, videoInput(owner.Session.ID, "ex2", "week_1"))
	require.NoError(t, err)
	other := f.uploadPlan(t)

	_, err = f.svc.TrimVideo(ctx, TrimRequest{
		InputPath:       writeTemp(t, "raw.mp4", []byte("raw")),
		TIn:             0,
		TOut:            2,
		ReplaceFilename: video.Filename,
		SessionID:       other.Session.ID,
	})
	assert.ErrorIs(t, err, ErrVideoNotFound)
	assert.Empty(t, f.trimmer.calls)
	assert.True(t, f.files.has(video.Filename))
}

func TestTrimVideoValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := writeTemp(t, "raw.mp4", []byte("raw"))

	for _, tc := range [][2]float64{{5, 5}, {6, 2}, {-1, 2}} {
		_, err := f.svc.TrimVideo(ctx, TrimRequest{InputPath: input, TIn: tc[0], TOut: tc[1]})
		assert.ErrorIs(t, err, ErrInvalidTrim, "%v", tc)
	}
	assert.Empty(t, f.trimmer.calls)

	f.trimmer.err = &external.ProcessError{Command: "trim", ExitCode: 1, Stderr: "ffmpeg failed"}
	_, err := f.svc.TrimVideo(ctx, TrimRequest{InputPath: input, TIn: 0, TOut: 1})
	assert.ErrorContains(t, err, "ffmpeg failed")
	assert.Empty(t, f.files.objects)
}

func TestSummaryAndSendToCoach(t *testing.T) {
	f := newFixture(t)
	plan := f.uploadPlan(t)
	f.selectDay2(t, plan.Session.ID)
	ctx := context.Background()

	rpe := 8.0
	_, err := f.svc.UpdateExercise(ctx, ExerciseUpdate{SessionID: plan.Session.ID, ExerciseID: "ex3", WeekID: "week_1", RPE: &rpe})
	require.NoError(t, err)
	_, err = f.svc.UploadVideo(ctx, videoInput(plan.Session.ID, "ex2", "week_1"))
	require.NoError(t, err)

	sum, err := f.svc.Summary(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalVideos)
	assert.Equal(t, 2, sum.ExercisesWithData)
	require.NotNil(t, sum.AverageRPE)
	assert.Equal(t, 8.0, *sum.AverageRPE)
	assert.Contains(t, sum.ShareText, "Workout Summary - day-2")
	assert.Contains(t, sum.ShareText, "📹 Videos: 1")

	require.NoError(t, f.svc.SendToCoach(ctx, plan.Session.ID))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, sum.ShareText, f.notifier.sent[0].Text)
	assert.Len(t, f.notifier.sent[0].Videos, 1)
}

func TestSendToCoachErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.SendToCoach(ctx, 0), ErrNoActiveSession)
	assert.ErrorIs(t, f.svc.SendToCoach(ctx, 5), ErrSessionNotFound)

	f.uploadPlan(t)
	f.notifier.err = errors.New("telegram down")
	assert.ErrorContains(t, f.svc.SendToCoach(ctx, 0), "telegram down")
}

func TestRestart(t *testing.T) {
	f := newFixture(t)
	first := f.uploadPlan(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Restart(ctx))
	session, _, err := f.svc.CurrentSession(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, session)

	second := f.uploadPlan(t)
	assert.Greater(t, second.Session.ID, first.Session.ID)
}
