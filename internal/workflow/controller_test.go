package workflow

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gabe/rcbt/internal/client"
	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/notify"
	"github.com/gabe/rcbt/internal/progress"
	"github.com/gabe/rcbt/internal/validator"
)

const testBase = "http://reports.test"

type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	upload     func(models.Selection) (models.UploadedFileSet, error)
	generate   func(models.UploadedFileSet) (*client.GenerateResult, error)
	available  func(models.UploadedFileSet) (*models.AvailableData, error)
	individual func(models.TargetType, string) (string, error)
	session    func() (*client.SessionData, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: make(map[string]int),
		upload: func(models.Selection) (models.UploadedFileSet, error) {
			return fourRefs(), nil
		},
		generate: func(models.UploadedFileSet) (*client.GenerateResult, error) {
			return &client.GenerateResult{
				ReportPath: "r1.html",
				Metrics: models.Metrics{
					Page1: map[string]any{"taux_closure": 14.0, "closure_ok": true},
					Page2: map[string]any{"total_collaborators": 3.0},
				},
			}, nil
		},
		available: func(models.UploadedFileSet) (*models.AvailableData, error) {
			return &models.AvailableData{Sites: []string{"Lyon", "Paris"}, Collaborators: []string{"A. Martin"}}, nil
		},
		individual: func(kind models.TargetType, target string) (string, error) {
			return "reports/" + string(kind) + " " + target + ".html", nil
		},
		session: func() (*client.SessionData, error) {
			return &client.SessionData{HasFiles: false}, nil
		},
	}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) Upload(_ context.Context, sel models.Selection) (models.UploadedFileSet, error) {
	f.hit("upload")
	return f.upload(sel)
}

func (f *fakeAPI) GenerateReport(_ context.Context, files models.UploadedFileSet) (*client.GenerateResult, error) {
	f.hit("generate")
	return f.generate(files)
}

func (f *fakeAPI) AvailableData(_ context.Context, files models.UploadedFileSet) (*models.AvailableData, error) {
	f.hit("available")
	return f.available(files)
}

func (f *fakeAPI) GenerateIndividual(_ context.Context, _ models.UploadedFileSet, kind models.TargetType, target string) (string, error) {
	f.hit("individual")
	return f.individual(kind, target)
}

func (f *fakeAPI) CheckSession(context.Context) (*client.SessionData, error) {
	f.hit("session")
	return f.session()
}

func (f *fakeAPI) URL(path string) string {
	return testBase + path
}

func (f *fakeAPI) DownloadURL(reportPath string) string {
	return testBase + "/download_report/" + url.PathEscape(reportPath)
}

type recordingRenderer struct {
	mu         sync.Mutex
	snapshots  []Snapshot
	updates    []progress.Update
	reports    []string
	detours    []string
	targets    [][]string
	placeholds []string
	opened     []string
}

func (r *recordingRenderer) Progress(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingRenderer) StateChanged(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recordingRenderer) ReportReady(path string, _ models.Metrics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, path)
}

func (r *recordingRenderer) ValidationRequired(_ models.Detour, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detours = append(r.detours, url)
}

func (r *recordingRenderer) Targets(_ models.TargetType, targets []string, placeholder string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, targets)
	r.placeholds = append(r.placeholds, placeholder)
}

func (r *recordingRenderer) OpenReport(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, url)
}

func (r *recordingRenderer) maxPercent(ch progress.Channel) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0.0
	for _, u := range r.updates {
		if u.Channel == ch && u.Percent > max {
			max = u.Percent
		}
	}
	return max
}

type fakeFlags struct {
	set bool
}

func (f *fakeFlags) Consume() (bool, error) {
	was := f.set
	f.set = false
	return was, nil
}

type harness struct {
	ctrl   *Controller
	api    *fakeAPI
	render *recordingRenderer
	events *notify.Memory
	flags  *fakeFlags
}

func newHarness(t *testing.T, policy string) *harness {
	t.Helper()
	h := &harness{
		api:    newFakeAPI(),
		render: &recordingRenderer{},
		events: notify.NewMemory(0),
		flags:  &fakeFlags{},
	}
	log := notify.NewManager(h.events)
	v := validator.New(config.DefaultConfig().Upload, log)
	h.ctrl = New(h.api, h.render, log, h.flags, v, Options{
		DetourPolicy: policy,
		Random:       progress.RandomConfig{Tick: time.Millisecond, MaxIncrement: 15, Cap: 90},
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) hasEntry(level notify.Level, substr string) bool {
	for _, e := range h.events.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func fourRefs() models.UploadedFileSet {
	return models.UploadedFileSet{
		models.SlotEnq:  "uploads/enq.xlsx",
		models.SlotCase: "uploads/case.xlsx",
		models.SlotRef:  "uploads/ref.xlsx",
		models.SlotAcct: "uploads/acct.xlsx",
	}
}

func fullSelection(t *testing.T) models.Selection {
	t.Helper()
	dir := t.TempDir()
	sel := models.Selection{}
	for _, slot := range models.Slots {
		p := filepath.Join(dir, string(slot)+".xlsx")
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		f, err := validator.Describe(p)
		if err != nil {
			t.Fatal(err)
		}
		sel[slot] = f
	}
	return sel
}

// uploadAndGenerate brings the controller to a finished global report
func (h *harness) uploadAndGenerate(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.ctrl.Upload(ctx, fullSelection(t)); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if _, err := h.ctrl.Generate(ctx); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
}

// Scenario A
func TestUploadEnablesGenerate(t *testing.T) {
	h := newHarness(t, config.DetourHold)

	files, err := h.ctrl.Upload(context.Background(), fullSelection(t))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if len(files) != 4 || !h.ctrl.Files().Complete() {
		t.Fatalf("expected 4 references, got %v", h.ctrl.Files())
	}

	snap := h.ctrl.Snapshot()
	if !snap.CanGenerate || snap.State != Idle {
		t.Errorf("expected generate enabled in Idle, got %+v", snap)
	}
	if h.render.maxPercent(progress.Global) != 50 {
		t.Errorf("expected upload progress to reach 50, got %v", h.render.maxPercent(progress.Global))
	}
	if !h.hasEntry(notify.LevelSuccess, "uploaded successfully") {
		t.Error("expected upload success entry")
	}
	if h.ctrl.Progress().Current(progress.Global).Visible {
		t.Error("expected global progress cleared after upload")
	}
}

func TestUploadMissingSlotMakesNoRequest(t *testing.T) {
	h := newHarness(t, config.DetourHold)

	sel := fullSelection(t)
	delete(sel, models.SlotRef)

	_, err := h.ctrl.Upload(context.Background(), sel)
	var verr *validator.Error
	if !errors.As(err, &verr) || !errors.Is(err, validator.ErrMissingFile) {
		t.Fatalf("expected missing file error, got %v", err)
	}
	if verr.Slot != models.SlotRef {
		t.Errorf("expected ref slot, got %s", verr.Slot)
	}
	if h.api.count("upload") != 0 {
		t.Error("expected no upload request")
	}
	if !h.hasEntry(notify.LevelError, "ref_file") {
		t.Error("expected error entry naming the slot")
	}
	if h.ctrl.State() != Idle {
		t.Errorf("expected Idle, got %s", h.ctrl.State())
	}
}

func TestUploadInvalidFileMakesNoRequest(t *testing.T) {
	h := newHarness(t, config.DetourHold)

	sel := fullSelection(t)
	bad := sel[models.SlotCase]
	bad.MediaType = "text/csv"
	sel[models.SlotCase] = bad

	_, err := h.ctrl.Upload(context.Background(), sel)
	if !errors.Is(err, validator.ErrMediaType) {
		t.Fatalf("expected media type error, got %v", err)
	}
	if h.api.count("upload") != 0 {
		t.Error("expected no upload request")
	}
	if _, ok := sel[models.SlotCase]; ok {
		t.Error("expected rejected slot cleared")
	}
}

func TestUploadFailureKeepsFiles(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	ctx := context.Background()

	if _, err := h.ctrl.Upload(ctx, fullSelection(t)); err != nil {
		t.Fatal(err)
	}
	before := h.ctrl.Files()

	h.api.upload = func(models.Selection) (models.UploadedFileSet, error) {
		return nil, &client.ServerError{Op: "upload", Message: "disk full"}
	}
	if _, err := h.ctrl.Upload(ctx, fullSelection(t)); err == nil {
		t.Fatal("expected upload error")
	}

	after := h.ctrl.Files()
	for _, slot := range models.Slots {
		if before[slot] != after[slot] {
			t.Errorf("file set changed for %s", slot)
		}
	}
	if !h.hasEntry(notify.LevelError, "disk full") {
		t.Error("expected server message in error entry")
	}
	if h.ctrl.Progress().Current(progress.Global).Visible {
		t.Error("expected progress cleared after failure")
	}
}

func TestUploadPartialResponseIsFailure(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.api.upload = func(models.Selection) (models.UploadedFileSet, error) {
		refs := fourRefs()
		delete(refs, models.SlotAcct)
		return refs, nil
	}

	if _, err := h.ctrl.Upload(context.Background(), fullSelection(t)); err == nil {
		t.Fatal("expected error for partial file set")
	}
	if !h.ctrl.Files().Empty() {
		t.Error("expected file set to stay absent")
	}
}

// Scenario B
func TestGenerateIncompleteFilesMakesNoRequest(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	// Three of four references held
	h.ctrl.files = fourRefs()
	delete(h.ctrl.files, models.SlotEnq)

	_, err := h.ctrl.Generate(context.Background())
	if !errors.Is(err, ErrIncompleteFiles) {
		t.Fatalf("expected ErrIncompleteFiles, got %v", err)
	}
	if h.api.count("generate") != 0 {
		t.Error("expected no generate request")
	}
	if h.ctrl.InProgress() {
		t.Error("expected workflow not in progress")
	}
	if !h.hasEntry(notify.LevelError, "upload all files") {
		t.Error("expected error entry")
	}
}

// Scenario C, hold policy
func TestGenerateDetourHold(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.uploadAndGenerate(t)
	if !h.ctrl.IndividualVisible() {
		t.Fatal("expected individual section visible after first report")
	}
	reportsBefore := len(h.render.reports)

	h.api.generate = func(models.UploadedFileSet) (*client.GenerateResult, error) {
		return &client.GenerateResult{Detour: &models.Detour{Inconsistencies: 7, Message: "check", RedirectTo: "/validate/123"}}, nil
	}
	res, err := h.ctrl.Generate(context.Background())
	if err != nil {
		t.Fatalf("detour must not be an error: %v", err)
	}
	if res.Detour == nil {
		t.Fatal("expected detour in result")
	}

	if !h.hasEntry(notify.LevelWarning, "7") {
		t.Error("expected warning with inconsistency count")
	}
	if len(h.render.reports) != reportsBefore {
		t.Error("expected no metrics rendered on detour")
	}
	if got := h.render.detours[len(h.render.detours)-1]; got != testBase+"/validate/123" {
		t.Errorf("unexpected redirect %q", got)
	}

	snap := h.ctrl.Snapshot()
	if snap.State != AwaitingValidation {
		t.Errorf("expected AwaitingValidation, got %s", snap.State)
	}
	if snap.State.InProgress() {
		t.Error("expected workflow not in progress after detour")
	}
	if !snap.CanGenerate {
		t.Error("expected generate re-enabled")
	}
	if snap.IndividualVisible {
		t.Error("expected individual section hidden while awaiting validation")
	}
	if snap.ReportPath != "r1.html" {
		t.Errorf("expected report path untouched, got %q", snap.ReportPath)
	}
}

// Scenario C, end policy
func TestGenerateDetourEnd(t *testing.T) {
	h := newHarness(t, config.DetourEnd)
	h.uploadAndGenerate(t)
	availableCalls := h.api.count("available")

	h.api.generate = func(models.UploadedFileSet) (*client.GenerateResult, error) {
		return &client.GenerateResult{Detour: &models.Detour{Inconsistencies: 7, RedirectTo: "/validate/123"}}, nil
	}
	if _, err := h.ctrl.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := h.ctrl.Snapshot()
	if snap.State != Idle {
		t.Errorf("expected Idle, got %s", snap.State)
	}
	if !snap.IndividualVisible {
		t.Error("expected section shown since targets were loaded before")
	}
	if h.api.count("available") != availableCalls {
		t.Error("detour must not load targets")
	}
}

func TestGenerateDetourEndWithoutDataStaysHidden(t *testing.T) {
	h := newHarness(t, config.DetourEnd)
	h.ctrl.files = fourRefs()
	h.api.generate = func(models.UploadedFileSet) (*client.GenerateResult, error) {
		return &client.GenerateResult{Detour: &models.Detour{Inconsistencies: 2}}, nil
	}

	if _, err := h.ctrl.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := h.ctrl.Snapshot()
	if snap.IndividualVisible || snap.Available != nil || snap.ReportPath != "" {
		t.Errorf("unexpected snapshot after detour %+v", snap)
	}
}

// Scenario D
func TestGenerateSuccess(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.uploadAndGenerate(t)

	snap := h.ctrl.Snapshot()
	if snap.ReportPath != "r1.html" {
		t.Errorf("expected report path r1.html, got %q", snap.ReportPath)
	}
	if snap.State != Idle || !snap.IndividualVisible {
		t.Errorf("expected Idle with individual section visible, got %+v", snap)
	}
	if len(h.render.reports) != 1 {
		t.Errorf("expected metrics rendered once, got %d", len(h.render.reports))
	}
	if h.render.maxPercent(progress.Global) != 100 {
		t.Error("expected staged progress to reach 100")
	}
	if len(snap.Available.Sites) != 2 {
		t.Errorf("expected targets loaded, got %+v", snap.Available)
	}
}

func TestGenerateFailureReturnsToIdle(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.ctrl.files = fourRefs()
	h.api.generate = func(models.UploadedFileSet) (*client.GenerateResult, error) {
		return nil, &client.TransportError{Op: "generate report", StatusCode: 500}
	}

	if _, err := h.ctrl.Generate(context.Background()); !client.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	snap := h.ctrl.Snapshot()
	if snap.State != Idle || !snap.CanGenerate {
		t.Errorf("expected Idle with generate enabled, got %+v", snap)
	}
	if h.ctrl.Progress().Current(progress.Global).Visible {
		t.Error("expected progress cleared")
	}
}

func TestSuccessAfterDetourEndsHold(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.ctrl.files = fourRefs()
	detour := true
	h.api.generate = func(models.UploadedFileSet) (*client.GenerateResult, error) {
		if detour {
			return &client.GenerateResult{Detour: &models.Detour{Inconsistencies: 1}}, nil
		}
		return &client.GenerateResult{ReportPath: "r2.html"}, nil
	}

	if _, err := h.ctrl.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.ctrl.State() != AwaitingValidation {
		t.Fatalf("expected AwaitingValidation, got %s", h.ctrl.State())
	}

	detour = false
	if _, err := h.ctrl.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := h.ctrl.Snapshot()
	if snap.State != Idle || snap.Detour != nil || !snap.IndividualVisible {
		t.Errorf("expected hold released by successful generation, got %+v", snap)
	}
}

func TestDispatchWhileBusy(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.uploadAndGenerate(t)

	release := make(chan struct{})
	entered := make(chan struct{})
	h.api.generate = func(models.UploadedFileSet) (*client.GenerateResult, error) {
		close(entered)
		<-release
		return &client.GenerateResult{ReportPath: "r3.html"}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Generate(context.Background())
		done <- err
	}()
	<-entered

	if !h.ctrl.InProgress() {
		t.Error("expected in progress while generating")
	}
	if h.ctrl.IndividualVisible() {
		t.Error("expected individual section hidden while generating")
	}
	if _, err := h.ctrl.Generate(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for second generate, got %v", err)
	}
	if _, err := h.ctrl.Upload(context.Background(), fullSelection(t)); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for upload, got %v", err)
	}
	if _, err := h.ctrl.Recover(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for recover, got %v", err)
	}
	if _, err := h.ctrl.GenerateIndividual(context.Background(), models.TargetSite, "Lyon"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for individual report, got %v", err)
	}
	if h.api.count("generate") != 2 || h.api.count("upload") != 1 {
		t.Errorf("rejected dispatches must not reach the server: %v", h.api.calls)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	if h.ctrl.InProgress() {
		t.Error("expected workflow finished")
	}
}

// Scenario E
func TestRecoverRestoresSession(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.api.session = func() (*client.SessionData, error) {
		return &client.SessionData{HasFiles: true, Files: fourRefs()}, nil
	}

	files, err := h.ctrl.Recover(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !files.Complete() || !h.ctrl.Files().Complete() {
		t.Fatalf("expected recovered file set, got %v", files)
	}
	if h.api.count("upload") != 0 {
		t.Error("recovery must not upload")
	}
	if !h.ctrl.IndividualVisible() {
		t.Error("expected individual section revealed")
	}
	if !h.hasEntry(notify.LevelInfo, "Session detected") {
		t.Error("expected session detected entry")
	}
}

func TestRecoverAfterValidation(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.ctrl.files = fourRefs()
	h.api.generate = func(models.UploadedFileSet) (*client.GenerateResult, error) {
		return &client.GenerateResult{Detour: &models.Detour{Inconsistencies: 3}}, nil
	}
	h.api.session = func() (*client.SessionData, error) {
		return &client.SessionData{HasFiles: true, Files: fourRefs()}, nil
	}
	if _, err := h.ctrl.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Recovery without the flag keeps the hold
	if _, err := h.ctrl.Recover(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.ctrl.State() != AwaitingValidation || h.ctrl.IndividualVisible() {
		t.Fatal("expected hold to survive a plain recovery")
	}

	h.flags.set = true
	if _, err := h.ctrl.Recover(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.ctrl.State() != Idle || !h.ctrl.IndividualVisible() {
		t.Errorf("expected Idle and visible after validation, got %s", h.ctrl.State())
	}
	if h.flags.set {
		t.Error("expected flag consumed")
	}
	if !h.hasEntry(notify.LevelSuccess, "Returned after validation") {
		t.Error("expected validation return entry")
	}
}

func TestRecoverWithoutSessionIsSilent(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.api.session = func() (*client.SessionData, error) {
		return nil, &client.TransportError{Op: "check session", Err: errors.New("connection refused")}
	}

	files, err := h.ctrl.Recover(context.Background())
	if err != nil || files != nil {
		t.Fatalf("expected silent empty recovery, got %v %v", files, err)
	}
	if len(h.events.Entries()) != 0 {
		t.Errorf("expected no entries, got %v", h.events.Entries())
	}
}

func TestRecoverDropsSessionSupersededByUpload(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.flags.set = true

	release := make(chan struct{})
	entered := make(chan struct{})
	h.api.session = func() (*client.SessionData, error) {
		close(entered)
		<-release
		return &client.SessionData{HasFiles: true, Files: models.UploadedFileSet{
			models.SlotEnq:  "old/enq.xlsx",
			models.SlotCase: "old/case.xlsx",
			models.SlotRef:  "old/ref.xlsx",
			models.SlotAcct: "old/acct.xlsx",
		}}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Recover(context.Background())
		done <- err
	}()
	<-entered

	if _, err := h.ctrl.Upload(context.Background(), fullSelection(t)); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale for session older than the upload, got %v", err)
	}

	if got := h.ctrl.Files()[models.SlotEnq]; got != "uploads/enq.xlsx" {
		t.Errorf("expected uploaded files kept, got %q", got)
	}
	if h.ctrl.Available() != nil || h.ctrl.IndividualVisible() {
		t.Error("expected no targets from the dropped session")
	}
	if h.api.count("available") != 0 {
		t.Error("expected no target request")
	}
	if !h.flags.set {
		t.Error("expected validation flag left for the next recovery")
	}
}

func TestLoadTargetsNoopWithoutFiles(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	data, err := h.ctrl.LoadTargets(context.Background())
	if err != nil || data != nil {
		t.Fatalf("expected no-op, got %v %v", data, err)
	}
	if h.api.count("available") != 0 {
		t.Error("expected no request")
	}
}

func TestLoadTargetsDiscardsStaleResponse(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.ctrl.files = fourRefs()

	release := make(chan struct{})
	entered := make(chan struct{})
	var first sync.Once
	h.api.available = func(models.UploadedFileSet) (*models.AvailableData, error) {
		isFirst := false
		first.Do(func() { isFirst = true })
		if isFirst {
			close(entered)
			<-release
			return &models.AvailableData{Sites: []string{"old"}}, nil
		}
		return &models.AvailableData{Sites: []string{"new"}}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.LoadTargets(context.Background())
		done <- err
	}()
	<-entered

	if _, err := h.ctrl.LoadTargets(context.Background()); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale for superseded response, got %v", err)
	}
	if got := h.ctrl.Available().Sites[0]; got != "new" {
		t.Errorf("expected newest targets kept, got %q", got)
	}
}

func TestSelectType(t *testing.T) {
	h := newHarness(t, config.DetourHold)

	if got := h.ctrl.SelectType(models.TargetSite); got != nil {
		t.Errorf("expected no targets before data, got %v", got)
	}
	if h.render.placeholds[0] != TargetPlaceholder {
		t.Errorf("expected placeholder, got %q", h.render.placeholds[0])
	}

	h.uploadAndGenerate(t)

	if got := h.ctrl.SelectType(models.TargetCollaborator); len(got) != 1 || got[0] != "A. Martin" {
		t.Errorf("unexpected collaborators %v", got)
	}
	if got := h.ctrl.SelectType(""); got != nil {
		t.Errorf("expected placeholder state for empty type, got %v", got)
	}
}

func TestGenerateIndividual(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.uploadAndGenerate(t)
	availableCalls := h.api.count("available")

	path, err := h.ctrl.GenerateIndividual(context.Background(), models.TargetSite, "Lyon")
	if err != nil {
		t.Fatalf("individual failed: %v", err)
	}
	if path != "reports/site Lyon.html" {
		t.Errorf("unexpected path %q", path)
	}
	if want := testBase + "/download_report/reports%2Fsite%20Lyon.html"; h.render.opened[0] != want {
		t.Errorf("expected %q opened, got %q", want, h.render.opened[0])
	}
	if h.api.count("available") != availableCalls+1 {
		t.Error("expected targets reloaded after individual report")
	}
	if got := h.ctrl.Progress().Current(progress.Individual); got.Percent != 100 {
		t.Errorf("expected individual progress at 100, got %v", got.Percent)
	}
}

func TestGenerateIndividualFailureResetsProgress(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.uploadAndGenerate(t)
	h.api.individual = func(models.TargetType, string) (string, error) {
		return "", &client.ServerError{Op: "individual report", Message: "unknown site"}
	}

	if _, err := h.ctrl.GenerateIndividual(context.Background(), models.TargetSite, "Nowhere"); !client.IsServer(err) {
		t.Fatalf("expected server error, got %v", err)
	}
	if got := h.ctrl.Progress().Current(progress.Individual); got.Visible || got.Percent != 0 {
		t.Errorf("expected individual progress reset, got %+v", got)
	}
	if !h.hasEntry(notify.LevelError, "unknown site") {
		t.Error("expected error entry")
	}
}

func TestGenerateIndividualRequiresTypeAndTarget(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	h.uploadAndGenerate(t)

	if _, err := h.ctrl.GenerateIndividual(context.Background(), models.TargetSite, ""); !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
	if h.api.count("individual") != 0 {
		t.Error("expected no request")
	}
}

func TestGenerateIndividualHiddenBeforeData(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	if _, err := h.ctrl.GenerateIndividual(context.Background(), models.TargetSite, "Lyon"); !errors.Is(err, ErrIndividualHidden) {
		t.Errorf("expected ErrIndividualHidden, got %v", err)
	}
}

func TestOpenReport(t *testing.T) {
	h := newHarness(t, config.DetourHold)
	if _, err := h.ctrl.OpenReport(); !errors.Is(err, ErrNoReport) {
		t.Fatalf("expected ErrNoReport, got %v", err)
	}

	h.uploadAndGenerate(t)
	url, err := h.ctrl.OpenReport()
	if err != nil {
		t.Fatal(err)
	}
	if url != testBase+"/download_report/r1.html" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestStateString(t *testing.T) {
	if AwaitingValidation.String() != "awaiting validation" || Idle.InProgress() || !Uploading.InProgress() {
		t.Error("unexpected state helpers")
	}
}
