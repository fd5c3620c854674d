// Command txn-seeder posts randomized transactions to the transaction
// service to exercise the fraud pipeline end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	apiURL    = flag.String("url", "http://localhost:8090", "transaction service base URL")
	count     = flag.Int("count", 100, "Number of transactions to generate")
	interval  = flag.Duration("interval", 100*time.Millisecond, "Interval between requests")
	users     = flag.Int("users", 10, "Size of the simulated user pool")
	merchants = flag.Int("merchants", 20, "Size of the simulated merchant pool")
	hotRate   = flag.Float64("hot-rate", 0.1, "Fraction of transactions with a suspiciously high amount")
)

type transactionRequest struct {
	UserID        string `json:"userId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	MerchantID    string `json:"merchantId"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"`
}

var (
	currencies     = []string{"USD", "EUR", "GBP", "JPY", "CHF"}
	countries      = []string{"US", "DE", "GB", "JP", "CH", "FR", "NL", "BR"}
	paymentMethods = []string{"CARD", "TRANSFER"}
)

func main() {
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	userPool := make([]string, *users)
	for i := range userPool {
		userPool[i] = gofakeit.UUID()
	}
	merchantPool := make([]string, *merchants)
	for i := range merchantPool {
		merchantPool[i] = fmt.Sprintf("%s-%s", gofakeit.Company(), gofakeit.LetterN(4))
	}

	log.Printf("Starting transaction seeder:")
	log.Printf("  URL: %s", *apiURL)
	log.Printf("  Count: %d", *count)
	log.Printf("  Interval: %v", *interval)
	log.Printf("  Users: %d, merchants: %d, hot rate: %.2f", *users, *merchants, *hotRate)

	client := &http.Client{Timeout: 10 * time.Second}

	successCount := 0
	failCount := 0

	for i := 0; i < *count; i++ {
		req := generateTransaction(userPool, merchantPool)
		if err := post(client, *apiURL, req); err != nil {
			log.Printf("Failed to send transaction: %v", err)
			failCount++
		} else {
			successCount++
			if successCount%50 == 0 {
				log.Printf("Progress: %d/%d transactions sent", successCount, *count)
			}
		}

		if *interval > 0 && i < *count-1 {
			time.Sleep(*interval)
		}
	}

	log.Printf("Done: %d sent, %d failed", successCount, failCount)
}

func generateTransaction(userPool, merchantPool []string) *transactionRequest {
	amount := gofakeit.Price(1, 500)
	if rand.Float64() < *hotRate {
		amount = gofakeit.Price(10_001, 50_000)
	}

	return &transactionRequest{
		UserID:        userPool[rand.Intn(len(userPool))],
		Amount:        fmt.Sprintf("%.2f", amount),
		Currency:      currencies[rand.Intn(len(currencies))],
		MerchantID:    merchantPool[rand.Intn(len(merchantPool))],
		Country:       countries[rand.Intn(len(countries))],
		PaymentMethod: paymentMethods[rand.Intn(len(paymentMethods))],
	}
}

func post(client *http.Client, baseURL string, req *transactionRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/api/v1/transactions", "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("post transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
