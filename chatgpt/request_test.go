package chatgpt

import (
	"encoding/json"
	"testing"
)

func TestWindowedMessages(t *testing.T) {
	tests := []struct {
		name   string
		window int
		total  int
		want   int
	}{
		{"default window", 5, 8, 5},
		{"window larger than history", 5, 2, 2},
		{"zero window sends most recent", 0, 4, 1},
		{"exact fit", 3, 3, 3},
		{"empty history", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestConversation(t)
			_ = c.SetContextMessages(tt.window)
			for i := 0; i < tt.total; i++ {
				_ = c.AddUser(string(rune('a' + i)))
			}

			got := c.windowedMessages()
			if len(got) != tt.want {
				t.Fatalf("window len=%d want=%d", len(got), tt.want)
			}
			// Whatever survives must be the tail, in order.
			all := c.Messages()
			for i, m := range got {
				if m != all[len(all)-len(got)+i] {
					t.Fatalf("window[%d]=%+v not tail of history", i, m)
				}
			}
		})
	}
}

func TestWindowedMessages_ZeroWindowScenario(t *testing.T) {
	c := newTestConversation(t)
	_ = c.SetContextMessages(1)
	_ = c.AddSystem("be brief")
	_ = c.AddUser("hi")
	_ = c.AddAssistant("yo")
	_ = c.AddUser("now")

	got := c.windowedMessages()
	if len(got) != 1 || got[0].Role != RoleUser || got[0].Content != "now" {
		t.Fatalf("window=%+v", got)
	}
}

func TestBuildRequestBody_ConditionalFields(t *testing.T) {
	c := newTestConversation(t)
	_ = c.AddUser("hello")

	body := c.buildRequestBody(false)

	if body["model"] != DefaultModel {
		t.Fatalf("model=%v", body["model"])
	}
	if _, ok := body["temperature"]; !ok {
		t.Fatal("temperature must always be present")
	}
	if _, ok := body["top_p"]; !ok {
		t.Fatal("top_p must always be present")
	}
	for _, key := range []string{"presence_penalty", "frequency_penalty", "max_tokens", "stream"} {
		if _, ok := body[key]; ok {
			t.Fatalf("%s present at defaults", key)
		}
	}

	_ = c.SetPresencePenalty(0.5)
	_ = c.SetFrequencyPenalty(-0.25)
	_ = c.SetMaxTokens(100)
	body = c.buildRequestBody(true)
	if body["presence_penalty"] != 0.5 || body["frequency_penalty"] != -0.25 {
		t.Fatalf("penalties=%v %v", body["presence_penalty"], body["frequency_penalty"])
	}
	if body["max_tokens"] != 100 {
		t.Fatalf("max_tokens=%v", body["max_tokens"])
	}
	if body["stream"] != true {
		t.Fatalf("stream=%v", body["stream"])
	}
}

func TestBuildRequestBody_MessageShape(t *testing.T) {
	c := newTestConversation(t)
	_ = c.SetContextMessages(1)
	_ = c.AddSystem("sys")
	_ = c.AddUser("now")

	raw, err := json.Marshal(c.buildRequestBody(false))
	if err != nil {
		t.Fatalf("marshal err=%v", err)
	}
	var decoded struct {
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal err=%v", err)
	}
	want := []Message{{Role: "user", Content: "now"}}
	if len(decoded.Messages) != 1 || decoded.Messages[0] != want[0] {
		t.Fatalf("messages=%+v", decoded.Messages)
	}
}
