package accounts

import "time"

// User is the minimal identity record. Authentication proper lives outside
// this service; a user is an email plus an opaque session token.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile holds per-user settings and the stored risk score.
type Profile struct {
	UserID              int64  `json:"user_id"`
	Province            string `json:"province"`
	PreferredLanguage   string `json:"preferred_language"`
	RiskScore           *int   `json:"risk_score"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

// QuizChoice is one selectable answer worth Value points (1-4).
type QuizChoice struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

// QuizQuestion is one question of the risk tolerance quiz.
type QuizQuestion struct {
	Key     string       `json:"key"`
	Text    string       `json:"text"`
	Choices []QuizChoice `json:"choices"`
}

// Tier is the risk tier derived from a risk score.
type Tier string

const (
	TierConservative Tier = "conservative"
	TierModerate     Tier = "moderate"
	TierGrowth       Tier = "growth"
)

// QuizQuestions is the canonical six-question risk tolerance quiz. The
// order matters: steps are addressed by 1-based index.
var QuizQuestions = []QuizQuestion{
	{
		Key:  "investment_knowledge",
		Text: "How would you describe your investment knowledge?",
		Choices: []QuizChoice{
			{1, "I'm a complete beginner"},
			{2, "I know the basics (stocks, bonds, ETFs)"},
			{3, "I have intermediate knowledge and some experience"},
			{4, "I'm experienced and understand most financial products"},
		},
	},
	{
		Key:  "time_horizon",
		Text: "What is your investment time horizon?",
		Choices: []QuizChoice{
			{1, "Less than 2 years"},
			{2, "2 to 5 years"},
			{3, "5 to 10 years"},
			{4, "More than 10 years"},
		},
	},
	{
		Key:  "risk_comfort",
		Text: "If your portfolio lost 20% of its value in a month, what would you do?",
		Choices: []QuizChoice{
			{1, "Sell everything immediately"},
			{2, "Sell some to reduce risk"},
			{3, "Do nothing and wait for recovery"},
			{4, "Buy more at the lower price"},
		},
	},
	{
		Key:  "loss_reaction",
		Text: "How much of your portfolio could you afford to lose without impacting your lifestyle?",
		Choices: []QuizChoice{
			{1, "None — I need all of it"},
			{2, "Up to 10%"},
			{3, "Up to 25%"},
			{4, "More than 25%"},
		},
	},
	{
		Key:  "income_stability",
		Text: "How stable is your current income?",
		Choices: []QuizChoice{
			{1, "Very unstable or no income"},
			{2, "Somewhat unstable"},
			{3, "Stable with some variability"},
			{4, "Very stable (salaried, tenured, etc.)"},
		},
	},
	{
		Key:  "return_expectation",
		Text: "Which statement best describes your return expectations?",
		Choices: []QuizChoice{
			{1, "I want to preserve my capital, even if returns are low"},
			{2, "I prefer steady, modest returns with low risk"},
			{3, "I want a balance of growth and stability"},
			{4, "I want maximum growth, even if it means high volatility"},
		},
	},
}

// QuestionByKey returns the quiz question with the given key, or nil.
func QuestionByKey(key string) *QuizQuestion {
	for i := range QuizQuestions {
		if QuizQuestions[i].Key == key {
			return &QuizQuestions[i]
		}
	}
	return nil
}
