package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"univisa.org/internal/compliance"
	"univisa.org/internal/compliance/remote"
	"univisa.org/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := remote.New(cfg.APIBase)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := client.CreateCPTRequest(ctx, "demo", compliance.CPTDraft{
		CompanyName:       "Acme Corp",
		Role:              "Software Intern",
		ExpectedStartDate: compliance.NewDate(2026, 6, 1),
		ExpectedEndDate:   compliance.NewDate(2026, 8, 30),
		Notes:             "smoke test",
	})
	if err != nil {
		log.Fatalf("create cpt request: %v", err)
	}
	if created.Status != compliance.StatusIntent {
		log.Fatalf("new request status = %q, want intent", created.Status)
	}

	list, err := client.ListCPTRequests(ctx, "demo")
	if err != nil {
		log.Fatalf("list cpt requests: %v", err)
	}
	if len(list) == 0 || list[0].ID != created.ID {
		log.Fatalf("created request not first in listing")
	}

	signed, err := client.MarkOfferSigned(ctx, "demo", created.ID)
	if err != nil {
		log.Fatalf("mark offer signed: %v", err)
	}
	if signed.Status != compliance.StatusOfferSigned || signed.SignedOfferUploadedAt == nil {
		log.Fatalf("unexpected signed request: %+v", signed)
	}

	dso, err := client.AuthorityRequests(ctx)
	if err != nil {
		log.Fatalf("authority requests: %v", err)
	}
	found := false
	for _, item := range dso {
		if item.ID == created.ID && item.StudentName != "" {
			found = true
			break
		}
	}
	if !found {
		log.Fatalf("request %s missing from authority view", created.ID)
	}

	ans, err := client.Chat(ctx, "demo", "Can I work more than 20 hours on campus?")
	if err != nil {
		log.Fatalf("chat: %v", err)
	}
	if ans.Answer == "" {
		log.Fatalf("empty chat answer")
	}

	fmt.Printf("✅ univisa smoke test passed: request=%s\n", created.ID)
}
