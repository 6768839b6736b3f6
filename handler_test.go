package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/llm"
	"lg/weight-planner-api/internal/mealplan"
)

/* ─── Test doubles ───────────────────────────────────────────────────── */

type staticRecipes struct {
	rows []mealplan.RawRecipe
	err  error
}

func (s staticRecipes) List(context.Context) ([]mealplan.RawRecipe, error) { return s.rows, s.err }

type staticSearcher struct {
	hits []advisor.ScoredDocument
	err  error
}

func (s staticSearcher) Search(context.Context, string, int) ([]advisor.ScoredDocument, error) {
	return s.hits, s.err
}

// testEnv is a router wired to a mock OpenAI server. No DB: every request
// carries its own profile.
type testEnv struct {
	router   *gin.Engine
	handler  *Handler
	setMock  func(int, interface{})
	lastBody func() string
}

// setupHandlerTest creates a Gin engine with a mock OpenAI server and a
// dummy user_id in place of the auth middleware.
func setupHandlerTest(t *testing.T) *testEnv {
	t.Helper()
	var mockStatus int
	var mockBody interface{}
	var lastBody string

	mockOpenAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		lastBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mockStatus)
		json.NewEncoder(w).Encode(mockBody)
	}))
	t.Cleanup(mockOpenAI.Close)

	ai, err := llm.New(llm.Config{APIKey: "test-key", BaseURL: mockOpenAI.URL})
	if err != nil {
		t.Fatalf("llm.New: %v", err)
	}

	gin.SetMode(gin.TestMode)
	h := &Handler{ai: ai, recipes: staticRecipes{}, searcher: staticSearcher{}}
	router := gin.New()
	api := router.Group("/api", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	})
	api.POST("/plan", h.createPlan)
	api.POST("/plan/summary", h.createPlanSummary)
	api.POST("/meals", h.createMealPlan)
	api.POST("/guidance", h.createGuidance)
	api.POST("/ask", h.ask)

	return &testEnv{
		router:  router,
		handler: h,
		setMock: func(status int, body interface{}) {
			mockStatus = status
			mockBody = body
		},
		lastBody: func() string { return lastBody },
	}
}

// doRequest sends a POST with the given JSON body.
func doRequest(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// openAIChatResponse wraps a content string in the OpenAI chat completions
// response shape (choices[0].message.content).
func openAIChatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
}

const exampleProfileJSON = `{"age":24,"gender":"male","height_cm":176,"current_weight_kg":85,"target_weight_kg":75,"activity_level":"moderate","weekly_rate_lbs":0.5}`

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

/* ─── Plan ───────────────────────────────────────────────────────────── */

func TestPlan_Success(t *testing.T) {
	env := setupHandlerTest(t)

	w := doRequest(env.router, "/api/plan", `{"profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Targets struct {
			BMR                 int    `json:"bmr"`
			MaintenanceCalories int    `json:"maintenance_calories"`
			TargetDailyCalories int    `json:"target_daily_calories"`
			Direction           string `json:"direction"`
		} `json:"targets"`
		Trajectory []struct {
			Week     int     `json:"week"`
			WeightKG float64 `json:"weight_kg"`
		} `json:"trajectory"`
		TotalWeeks int `json:"total_weeks"`
	}
	decode(t, w, &resp)
	if resp.Targets.BMR != 1735 || resp.Targets.MaintenanceCalories != 2689 || resp.Targets.TargetDailyCalories != 2440 {
		t.Errorf("targets = %+v", resp.Targets)
	}
	if len(resp.Trajectory) != 46 || resp.TotalWeeks != 45 {
		t.Errorf("trajectory len = %d, weeks = %d", len(resp.Trajectory), resp.TotalWeeks)
	}
	if resp.Trajectory[0].WeightKG != 85 || resp.Trajectory[45].WeightKG != 75 {
		t.Errorf("endpoints = %v, %v", resp.Trajectory[0], resp.Trajectory[45])
	}
}

func TestPlan_InvalidRate(t *testing.T) {
	env := setupHandlerTest(t)
	body := strings.Replace(exampleProfileJSON, `"weekly_rate_lbs":0.5`, `"weekly_rate_lbs":0`, 1)

	w := doRequest(env.router, "/api/plan", `{"profile":`+body+`}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "invalid configuration") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestPlan_NoProfileWithoutDB(t *testing.T) {
	env := setupHandlerTest(t)
	w := doRequest(env.router, "/api/plan", ``)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPlan_MalformedJSON(t *testing.T) {
	env := setupHandlerTest(t)
	w := doRequest(env.router, "/api/plan", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPlanSummary_Success(t *testing.T) {
	env := setupHandlerTest(t)
	env.setMock(http.StatusOK, openAIChatResponse("You can do this in 45 weeks!"))

	w := doRequest(env.router, "/api/plan/summary", `{"profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Summary struct {
			Prompt string `json:"prompt"`
			Text   string `json:"text"`
		} `json:"summary"`
	}
	decode(t, w, &resp)
	if resp.Summary.Text != "You can do this in 45 weeks!" {
		t.Errorf("text = %q", resp.Summary.Text)
	}
	if !strings.Contains(resp.Summary.Prompt, "over 45 weeks") {
		t.Errorf("prompt = %q", resp.Summary.Prompt)
	}
	if !strings.Contains(env.lastBody(), `"max_tokens":100`) {
		t.Errorf("request body = %s", env.lastBody())
	}
}

func TestPlanSummary_OpenAIError500(t *testing.T) {
	env := setupHandlerTest(t)
	env.setMock(http.StatusInternalServerError, map[string]string{"error": "internal"})

	w := doRequest(env.router, "/api/plan/summary", `{"profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "status 500") {
		t.Errorf("body should carry the upstream message: %s", w.Body.String())
	}
}

/* ─── Meals ──────────────────────────────────────────────────────────── */

func mealRecipes() []mealplan.RawRecipe {
	return []mealplan.RawRecipe{
		{Name: "Oat Bowl", MealType: "breakfast", DietType: "veg", Calories: 600, TotalFat: 5, Protein: 20, Ingredients: "['oats', 'milk']"},
		{Name: "Sugar Bomb", MealType: "breakfast", DietType: "veg", Calories: 610, Sugar: 45},
		{Name: "Dal", MealType: "lunch", DietType: "veg", Calories: 850, TotalFat: 10, Protein: 30, Ingredients: []string{"lentils"}},
		{Name: "Chicken", MealType: "dinner", DietType: "non_veg", Calories: 700},
	}
}

func TestMeals_Select(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.recipes = staticRecipes{rows: mealRecipes()}

	w := doRequest(env.router, "/api/meals", `{"calories":2439,"diet":"veg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Plan       mealplan.SelectedMealPlan `json:"plan"`
		EmptySlots []string                  `json:"empty_slots"`
	}
	decode(t, w, &resp)
	if len(resp.Plan.Meals) != 2 {
		t.Fatalf("meals = %+v", resp.Plan.Meals)
	}
	if resp.Plan.Meals[0].Recipe.Name != "Oat Bowl" || resp.Plan.Meals[1].Recipe.Name != "Dal" {
		t.Errorf("picked %s, %s", resp.Plan.Meals[0].Recipe.Name, resp.Plan.Meals[1].Recipe.Name)
	}
	if strings.Join(resp.EmptySlots, ",") != "snack,dinner" {
		t.Errorf("empty slots = %v", resp.EmptySlots)
	}
	if resp.Plan.Totals.Calories != 1450 {
		t.Errorf("total calories = %v", resp.Plan.Totals.Calories)
	}
}

func TestMeals_CaloriesFromProfile(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.recipes = staticRecipes{rows: mealRecipes()}

	w := doRequest(env.router, "/api/meals", `{"diet":"veg","profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Plan mealplan.SelectedMealPlan `json:"plan"`
	}
	decode(t, w, &resp)
	if resp.Plan.TotalCalories != 2440 {
		t.Errorf("total calories = %v, want 2440", resp.Plan.TotalCalories)
	}
}

func TestMeals_Annotate(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.recipes = staticRecipes{rows: mealRecipes()}
	env.setMock(http.StatusOK, openAIChatResponse("Sunrise Oats: add berries\nGolden Dal: less ghee"))

	w := doRequest(env.router, "/api/meals", `{"calories":2439,"diet":"veg","annotate":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Plan   mealplan.SelectedMealPlan `json:"plan"`
		Prompt string                    `json:"prompt"`
	}
	decode(t, w, &resp)
	if resp.Plan.Meals[0].Annotation != "Sunrise Oats: add berries" || resp.Plan.Meals[1].Annotation != "Golden Dal: less ghee" {
		t.Errorf("annotations = %q, %q", resp.Plan.Meals[0].Annotation, resp.Plan.Meals[1].Annotation)
	}
	if !strings.Contains(resp.Prompt, "• Breakfast (600 kcal): Ingredients: oats, milk") {
		t.Errorf("prompt = %q", resp.Prompt)
	}
}

func TestMeals_MissingDiet(t *testing.T) {
	env := setupHandlerTest(t)
	w := doRequest(env.router, "/api/meals", `{"calories":2000,"profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMeals_RecipeSourceError(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.recipes = staticRecipes{err: errors.New("db down")}
	w := doRequest(env.router, "/api/meals", `{"calories":2000,"diet":"veg"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

/* ─── Ask / guidance ─────────────────────────────────────────────────── */

func TestAsk_Success(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.searcher = staticSearcher{hits: []advisor.ScoredDocument{
		{Document: advisor.Document{Content: "Protein keeps you full.", Source: "Nut_Science"}, Score: 0.2},
	}}
	env.setMock(http.StatusOK, openAIChatResponse("Eat more protein.\nSOURCES: Nut_Science"))

	w := doRequest(env.router, "/api/ask", `{"question":"How do I stay full?","profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		SessionID string                  `json:"session_id"`
		NoMatch   bool                    `json:"no_match"`
		Answer    string                  `json:"answer"`
		Sources   []advisor.SourceSummary `json:"sources"`
	}
	decode(t, w, &resp)
	if resp.NoMatch || !strings.HasPrefix(resp.Answer, "Eat more protein.") {
		t.Errorf("resp = %+v", resp)
	}
	if resp.SessionID == "" || len(resp.Sources) != 1 {
		t.Errorf("session = %q, sources = %v", resp.SessionID, resp.Sources)
	}
	if !strings.Contains(env.lastBody(), "Protein keeps you full.") {
		t.Error("retrieved passage should be sent to the model")
	}
}

func TestAsk_NoMatch(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.searcher = staticSearcher{hits: []advisor.ScoredDocument{
		{Document: advisor.Document{Content: "far", Source: "diet"}, Score: 0.9},
	}}

	w := doRequest(env.router, "/api/ask", `{"question":"Anything?","profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		NoMatch bool   `json:"no_match"`
		Answer  string `json:"answer"`
	}
	decode(t, w, &resp)
	if !resp.NoMatch || resp.Answer != advisor.NoMatchReply {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAsk_UpstreamError(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.searcher = staticSearcher{hits: []advisor.ScoredDocument{
		{Document: advisor.Document{Content: "x", Source: "diet"}, Score: 0.1},
	}}
	env.setMock(http.StatusServiceUnavailable, map[string]string{"error": "overloaded"})

	w := doRequest(env.router, "/api/ask", `{"question":"q","profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAsk_SearchError(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.searcher = staticSearcher{err: errors.New("index offline")}

	w := doRequest(env.router, "/api/ask", `{"question":"q","profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "index offline") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAsk_Validation(t *testing.T) {
	env := setupHandlerTest(t)
	if w := doRequest(env.router, "/api/ask", `{"question":"  "}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty question: expected 400, got %d", w.Code)
	}
	if w := doRequest(env.router, "/api/ask", `{"question":"q","session_id":"nope"}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad session: expected 400, got %d", w.Code)
	}
}

func TestGuidance_Success(t *testing.T) {
	env := setupHandlerTest(t)
	env.handler.searcher = staticSearcher{hits: []advisor.ScoredDocument{
		{Document: advisor.Document{Content: "Walk 30 minutes.", Source: "physical"}, Score: 0.8},
	}}
	env.setMock(http.StatusOK, openAIChatResponse("Monday: walk 30 minutes"))

	w := doRequest(env.router, "/api/guidance", `{"profile":`+exampleProfileJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp advisor.Answer
	decode(t, w, &resp)
	if resp.Text != "Monday: walk 30 minutes" || len(resp.Sources) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := bearerToken(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Errorf("bearerToken(%q) = %q, %v", tc.header, got, ok)
		}
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		found    bool
		password string
		wantErr  bool
	}{
		{"match", true, "secret", false},
		{"wrong password", true, "guess", true},
		{"unknown user", false, "secret", true},
		{"unknown user with dummy password", false, "dummy", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPassword(string(hash), tt.found, tt.password)
			if tt.wantErr != (err != nil) {
				t.Fatalf("checkPassword err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errBadCredentials) {
				t.Errorf("err = %v, want errBadCredentials", err)
			}
		})
	}
}

func TestProfileRequest_DefaultActivity(t *testing.T) {
	p, err := profileRequest{Age: 30, Gender: "Female", HeightCM: 165, CurrentWeightKG: 70, TargetWeightKG: 65, WeeklyRateLbs: 0.5}.toProfile()
	if err != nil {
		t.Fatalf("toProfile: %v", err)
	}
	if p.ActivityLevel != "moderate" || p.Gender != "female" {
		t.Errorf("profile = %+v", p)
	}
}

func TestUserProfile_Incomplete(t *testing.T) {
	age := 30
	if _, err := (userProfile{Age: &age}).toProfile(); err == nil {
		t.Error("expected error for incomplete profile")
	}
}
