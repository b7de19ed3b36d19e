// Package app calls the external AI provider that produces candidate leads.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/HimangshuPronoy/LeadGen/app/config"
	"github.com/HimangshuPronoy/LeadGen/app/models"
)

var genHTTPClient = &http.Client{Timeout: 60 * time.Second}

// LeadGenerator produces candidate leads for a search request. The provider
// is opaque to the quota logic; it only ever returns an array of leads.
type LeadGenerator interface {
	Generate(ctx context.Context, req models.GenerateLeadsRequest) ([]models.Lead, error)
}

// OpenRouterGenerator asks a chat-completion model for leads and falls back
// to deterministic sample leads when the provider call or parse fails.
type OpenRouterGenerator struct {
	cfg    config.GeneratorConfig
	client *http.Client
}

func NewOpenRouterGenerator(cfg config.GeneratorConfig) *OpenRouterGenerator {
	return &OpenRouterGenerator{cfg: cfg, client: genHTTPClient}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type leadsEnvelope struct {
	Leads []models.Lead `json:"leads"`
}

func (g *OpenRouterGenerator) Generate(ctx context.Context, req models.GenerateLeadsRequest) ([]models.Lead, error) {
	leads, err := g.callProvider(ctx, req)
	if err != nil {
		// The original product degrades to sample data rather than failing
		// the search outright.
		log.Printf("lead provider failed, using sample leads: %v", err)
		leads = sampleLeads(req)
	}

	return scoreLeads(leads, req.LeadCount), nil
}

func (g *OpenRouterGenerator) callProvider(ctx context.Context, req models.GenerateLeadsRequest) ([]models.Lead, error) {
	payload := chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a professional lead generation assistant. Always respond with valid JSON containing realistic, high-quality business leads.",
			},
			{
				Role:    "user",
				Content: buildPrompt(req),
			},
		},
		Temperature: 0.8,
		MaxTokens:   3000,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if g.cfg.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", g.cfg.Referer)
	}
	if g.cfg.Title != "" {
		httpReq.Header.Set("X-Title", g.cfg.Title)
	}

	res, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var msg struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&msg)
		return nil, fmt.Errorf("provider http %d: %s", res.StatusCode, msg.Error.Message)
	}

	var chat chatResponse
	if err := json.NewDecoder(res.Body).Decode(&chat); err != nil {
		return nil, err
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	var envelope leadsEnvelope
	content := stripCodeFence(chat.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("provider content parse: %w", err)
	}
	return envelope.Leads, nil
}

func buildPrompt(req models.GenerateLeadsRequest) string {
	industry := req.Industry
	if industry == "" {
		industry = "Any"
	}
	location := req.Location
	if location == "" {
		location = "Global"
	}
	companySize := req.CompanySize
	if companySize == "" {
		companySize = "Any"
	}

	return fmt.Sprintf(`You are an expert lead generation AI that creates realistic business prospects. Based on the following criteria, generate %d high-quality business leads:

Query: %s
Industry: %s
Location: %s
Company Size: %s

For each lead, provide EXACTLY these JSON fields: company_name, contact_name, email, phone, website, industry, description.

Return ONLY a JSON object with a "leads" array. No other text.`,
		req.LeadCount, req.Query, industry, location, companySize)
}

// stripCodeFence removes a markdown fence some models wrap JSON answers in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// scoreLeads assigns display scores and truncates to the requested count.
func scoreLeads(leads []models.Lead, max int) []models.Lead {
	if max > 0 && len(leads) > max {
		leads = leads[:max]
	}
	for i := range leads {
		if leads[i].Score == 0 {
			// High scores between 75 and 99, stable per position.
			leads[i].Score = 75 + (i*7)%25
		}
		if leads[i].Status == "" {
			leads[i].Status = "new"
		}
	}
	return leads
}

// sampleLeads is the degraded-mode dataset returned when the provider is
// unavailable, mirroring the original service's fallback.
func sampleLeads(req models.GenerateLeadsRequest) []models.Lead {
	industry := req.Industry
	if industry == "" {
		industry = "Technology"
	}
	return []models.Lead{
		{
			CompanyName: "InnovateTech Solutions",
			ContactName: "Sarah Chen",
			Email:       "sarah.chen@innovatetech.com",
			Phone:       "+1 (415) 555-0123",
			Website:     "https://innovatetech.com",
			Industry:    industry,
			Description: "B2B SaaS platform helping companies optimize their sales processes. Rapidly growing startup looking to scale their customer acquisition efforts.",
		},
		{
			CompanyName: "DataStream Analytics",
			ContactName: "Marcus Rodriguez",
			Email:       "marcus.rodriguez@datastream.io",
			Phone:       "+1 (628) 555-0147",
			Website:     "https://datastream.io",
			Industry:    industry,
			Description: "Analytics consultancy serving mid-market retailers. Actively expanding their outbound pipeline this quarter.",
		},
		{
			CompanyName: "Brightline Logistics",
			ContactName: "Priya Nair",
			Email:       "priya.nair@brightlinelogistics.com",
			Phone:       "+1 (312) 555-0190",
			Website:     "https://brightlinelogistics.com",
			Industry:    industry,
			Description: "Regional freight coordinator digitizing its sales operation and evaluating lead generation tooling.",
		},
		{
			CompanyName: "Northwind Health Partners",
			ContactName: "David Okafor",
			Email:       "david.okafor@northwindhealth.com",
			Phone:       "+1 (206) 555-0168",
			Website:     "https://northwindhealth.com",
			Industry:    industry,
			Description: "Clinic network building a referral program and searching for qualified business development contacts.",
		},
		{
			CompanyName: "Summit Ridge Capital",
			ContactName: "Elena Vasquez",
			Email:       "elena.vasquez@summitridge.com",
			Phone:       "+1 (646) 555-0134",
			Website:     "https://summitridge.com",
			Industry:    industry,
			Description: "Boutique advisory firm whose partners want a steady flow of introductions to growth-stage founders.",
		},
		{
			CompanyName: "GreenGrid Energy",
			ContactName: "Tom Albright",
			Email:       "tom.albright@greengridenergy.com",
			Phone:       "+1 (512) 555-0176",
			Website:     "https://greengridenergy.com",
			Industry:    industry,
			Description: "Solar installer scaling into three new states and staffing an inside sales team that needs prospect lists.",
		},
	}
}
