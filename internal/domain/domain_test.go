package domain

import "testing"

func TestFlashcardBody(t *testing.T) {
	testCases := []struct {
		name string
		card Flashcard
		want CardBody
	}{
		{
			name: "text",
			card: Flashcard{Kind: KindText, Answer: "Paris"},
			want: TextBody{Answer: "Paris"},
		},
		{
			name: "equation falls back to answer",
			card: Flashcard{Kind: KindEquation, Answer: "x = 2"},
			want: EquationBody{Answer: "x = 2", Equation: "x = 2"},
		},
		{
			name: "equation with data",
			card: Flashcard{Kind: KindEquation, Answer: "area", Equation: "πr²"},
			want: EquationBody{Answer: "area", Equation: "πr²"},
		},
		{
			name: "image",
			card: Flashcard{Kind: KindImage, Answer: "cat", ImageURI: "file://cat.png"},
			want: ImageBody{Answer: "cat", ImageURI: "file://cat.png"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.card.Body(); got != tc.want {
				t.Errorf("Expected body %#v, but got %#v", tc.want, got)
			}
		})
	}
}

func TestFlashcardNormalize(t *testing.T) {
	c := Flashcard{Kind: "", Equation: "e=mc²", ImageURI: "x.png"}
	c.Normalize()
	if c.Kind != KindText || c.Equation != "" || c.ImageURI != "" {
		t.Errorf("Expected text card without optional fields, got %+v", c)
	}

	c = Flashcard{Kind: KindImage, Equation: "e=mc²", ImageURI: "x.png"}
	c.Normalize()
	if c.Equation != "" || c.ImageURI != "x.png" {
		t.Errorf("Expected image card to keep only its image, got %+v", c)
	}
}

func TestParseCardKind(t *testing.T) {
	if k, err := ParseCardKind(""); err != nil || k != KindText {
		t.Errorf("ParseCardKind(\"\") = %q, %v; want text", k, err)
	}
	if _, err := ParseCardKind("video"); err == nil {
		t.Error("Expected an error for unknown kind 'video'")
	}
}

func TestGoalSetCurrent(t *testing.T) {
	g := Goal{Target: 5}
	g.SetCurrent(4)
	if g.Completed {
		t.Error("4 of 5 should not be completed")
	}
	g.SetCurrent(5)
	if !g.Completed {
		t.Error("5 of 5 should be completed")
	}
	g.SetCurrent(-3)
	if g.Current != 0 || g.Completed {
		t.Errorf("negative progress should clamp to 0, got %+v", g)
	}
}

func TestDailyStatsCounter(t *testing.T) {
	d := DailyStats{Steps: 1, Calories: 2, Workouts: 3, WaterIntake: 4, Sleep: 5}
	want := map[GoalType]int{GoalSteps: 1, GoalCalories: 2, GoalWorkouts: 3, GoalWater: 4, GoalSleep: 5}
	for typ, v := range want {
		if got := d.Counter(typ); got != v {
			t.Errorf("Counter(%s) = %d, want %d", typ, got, v)
		}
	}
	totals := Totals{}.Add(d).Add(d)
	if totals != (Totals{Steps: 2, Calories: 4, Workouts: 6}) {
		t.Errorf("Totals = %+v", totals)
	}
}
