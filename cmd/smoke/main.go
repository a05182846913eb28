package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type smoke struct {
	baseURL string
	token   string
	client  *http.Client
}

// Pretty print JSON helper
func prettyPrint(raw json.RawMessage) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func (s *smoke) send(method, path string, body interface{}) (int, envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, envelope{}, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, bodyReader)
	if err != nil {
		return 0, envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, envelope{}, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, env, err
	}
	return resp.StatusCode, env, nil
}

func (s *smoke) step(title, method, path string, body interface{}, want int) envelope {
	color.Yellow("\n%s", title)
	status, env, err := s.send(method, path, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if status != want {
		color.Red("Status: %d (want %d) %s", status, want, env.Message)
		os.Exit(1)
	}
	color.Green("Status: %d %s", status, env.Message)
	prettyPrint(env.Data)
	return env
}

// smoke walks register, progress, catalog and the decision flow against a running server.
func main() {
	baseURL := flag.String("base", "http://localhost:3000/api", "API base URL")
	flag.Parse()

	s := &smoke{baseURL: *baseURL, client: &http.Client{Timeout: 30 * time.Second}}
	color.Cyan("🚀 Starting Decidely API smoke test against %s\n", s.baseURL)

	email := fmt.Sprintf("smoke-%s@decidely.test", uuid.NewString()[:8])
	env := s.step("[AUTH] 1. Register", http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": "smoke-password",
		"fullName": "Smoke Tester",
	}, http.StatusCreated)

	var auth struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(env.Data, &auth)
	s.token = auth.Token

	s.step("[PROGRESS] 2. Init", http.MethodPost, "/user-progress/init", nil, http.StatusOK)

	env = s.step("[SCENARIO] 3. List catalog", http.MethodGet, "/scenarios?limit=5", nil, http.StatusOK)
	var list struct {
		Items []struct {
			Id      string `json:"id"`
			Type    string `json:"type"`
			Options []struct {
				Text string `json:"text"`
			} `json:"options"`
		} `json:"items"`
	}
	_ = json.Unmarshal(env.Data, &list)

	for _, sc := range list.Items {
		if sc.Type != "scenario" || len(sc.Options) == 0 {
			continue
		}
		req := map[string]string{"scenarioId": sc.Id, "optionChosen": sc.Options[0].Text}
		s.step("[PROGRESS] 4. Submit decision", http.MethodPost, "/scenarios/response", req, http.StatusOK)
		s.step("[PROGRESS] 5. Submit again (already completed)", http.MethodPost, "/scenarios/response", req, http.StatusOK)
		break
	}

	s.step("[SCENARIO] 6. Daily challenges", http.MethodGet, "/daily-challenges", nil, http.StatusOK)
	s.step("[PROGRESS] 7. Dashboard", http.MethodGet, "/user-progress", nil, http.StatusOK)
	s.step("[CHAT] 8. Threads", http.MethodGet, "/chat", nil, http.StatusOK)

	color.Cyan("\n✅ Smoke test finished")
}
