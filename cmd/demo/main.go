// Command demo seeds an in-memory deployment from a YAML fixture and
// walks through the core transfer scenarios: simple payments, payee
// resolution by phone and by bank account, statement filtering, two
// concurrent opposing transfers, and an insufficient-balance rejection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/punchamoorthee/payflow/internal/domain"
	"github.com/punchamoorthee/payflow/internal/ledger"
	"github.com/punchamoorthee/payflow/internal/psp"
	"github.com/punchamoorthee/payflow/internal/service"
	"github.com/punchamoorthee/payflow/internal/store"
)

type seed struct {
	Banks []struct {
		Name string `yaml:"name"`
		Up   bool   `yaml:"up"`
	} `yaml:"banks"`
	Users []struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Phone string `yaml:"phone"`
	} `yaml:"users"`
	Accounts []struct {
		Number  string `yaml:"number"`
		Bank    string `yaml:"bank"`
		Owner   string `yaml:"owner"`
		Balance string `yaml:"balance"`
	} `yaml:"accounts"`
}

func main() {
	seedPath := flag.String("seed", "cmd/demo/seed.yaml", "YAML fixture to load")
	flag.Parse()

	raw, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatalf("reading seed fixture: %v", err)
	}
	var s seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		log.Fatalf("parsing seed fixture: %v", err)
	}

	users := store.NewUserDirectory()
	banks := store.NewBankDirectory()
	accounts := store.NewAccountRegistry()
	recorder := ledger.NewRecorder()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	engine := service.NewEngine(banks, recorder, psp.NewInstant(), logger, service.Config{})

	for _, b := range s.Banks {
		banks.Register(b.Name, b.Up)
	}
	for _, u := range s.Users {
		if _, err := users.Create(u.ID, u.Name, u.Phone); err != nil {
			log.Fatalf("seeding user %s: %v", u.ID, err)
		}
	}
	for _, a := range s.Accounts {
		owner, err := users.ByID(a.Owner)
		if err != nil {
			log.Fatalf("account %s: %v", a.Number, err)
		}
		bank, err := banks.Resolve(a.Bank)
		if err != nil {
			log.Fatalf("account %s: %v", a.Number, err)
		}
		balance, err := decimal.NewFromString(a.Balance)
		if err != nil {
			log.Fatalf("account %s: %v", a.Number, err)
		}
		if _, err := accounts.Open(a.Number, bank, balance, owner); err != nil {
			log.Fatalf("account %s: %v", a.Number, err)
		}
	}

	ctx := context.Background()
	alice, _ := users.ByID("U1")
	a1, _ := accounts.Lookup("HDFC", "A1")
	a2, _ := accounts.Lookup("ICICI", "A2")
	a3, _ := accounts.Lookup("IDFC", "A3")
	bob, _ := users.ByID("U2")

	fmt.Printf("Alice HDFC balance before: %s\n", a1.Balance())
	fmt.Printf("Bob ICICI balance before:  %s\n\n", a2.Balance())

	fmt.Println("---- Alice pays 200 to Bob ----")
	tx, err := engine.Transfer(ctx, alice, a1, bob, a2, decimal.NewFromInt(200))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("TX %s  status=%s\n", tx.ID, tx.Status())
	fmt.Printf("Alice: %s  Bob: %s\n\n", a1.Balance(), a2.Balance())

	fmt.Println("---- Bob pays 50 to Alice, addressed by phone ----")
	payee, err := users.ByPhone("999")
	if err != nil {
		log.Fatal(err)
	}
	primary, err := accounts.Primary(payee)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := engine.Transfer(ctx, bob, a2, payee, primary, decimal.NewFromInt(50)); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Alice: %s  Bob: %s\n\n", a1.Balance(), a2.Balance())

	fmt.Println("---- Bob pays 50 to Alice's IDFC account ----")
	ownerID, err := accounts.Owner("IDFC", "A3")
	if err != nil {
		log.Fatal(err)
	}
	owner, _ := users.ByID(ownerID)
	if _, err := engine.Transfer(ctx, bob, a2, owner, a3, decimal.NewFromInt(50)); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Alice IDFC: %s  Bob: %s\n\n", a3.Balance(), a2.Balance())

	printStatement := func(title, userID string, f ledger.Filter) {
		fmt.Println(title)
		for _, e := range recorder.Statement(userID, f) {
			fmt.Printf("  %s %s %s %s with %s\n", e.Bank, e.Amount, e.Type, e.Status, e.Counterparty)
		}
		fmt.Println()
	}

	printStatement("---- Alice full statement ----", "U1", ledger.Filter{})
	printStatement("---- Alice HDFC only ----", "U1", ledger.Filter{Bank: "HDFC"})
	printStatement("---- Alice with Bob ----", "U1", ledger.Filter{Counterparty: "U2"})
	printStatement("---- Alice as payer ----", "U1", ledger.Filter{Type: domain.EntryDebit})
	printStatement("---- Alice last 24h ----", "U1", ledger.Filter{From: time.Now().Add(-24 * time.Hour), To: time.Now()})

	fmt.Println("---- Two concurrent opposing transfers ----")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := engine.Transfer(ctx, bob, a2, alice, a3, decimal.NewFromInt(80)); err != nil {
			fmt.Printf("worker-1: %v\n", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := engine.Transfer(ctx, alice, a1, bob, a2, decimal.NewFromInt(150)); err != nil {
			fmt.Printf("worker-2: %v\n", err)
		}
	}()
	wg.Wait()
	fmt.Printf("Alice HDFC: %s  Alice IDFC: %s  Bob: %s\n\n", a1.Balance(), a3.Balance(), a2.Balance())

	fmt.Println("---- Bob attempts 1000 with insufficient balance ----")
	if _, err := engine.Transfer(ctx, bob, a2, alice, a3, decimal.NewFromInt(1000)); err != nil {
		fmt.Printf("rejected: %v\n", err)
	}
	fmt.Printf("Alice HDFC: %s  Alice IDFC: %s  Bob: %s\n", a1.Balance(), a3.Balance(), a2.Balance())
}
