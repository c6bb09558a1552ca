package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type record struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type stats struct {
	requests atomic.Int64
	failures atomic.Int64
}

func main() {
	baseURL := flag.String("url", "http://localhost:4000", "Base URL of the service")
	count := flag.Int("count", 200, "Number of records to cycle through")
	workers := flag.Int("concurrency", 8, "Concurrent workers")
	keep := flag.Bool("keep", false, "Leave created records in place instead of deleting them")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	st := &stats{}

	// 1. Probe
	if err := dbCheck(client, *baseURL); err != nil {
		log.Fatalf("db-check failed: %v", err)
	}

	// 2. Create -> update -> (delete) per record, fanned out over workers
	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)
	for i := 0; i < *count; i++ {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := cycle(client, *baseURL, i, *keep, st); err != nil {
				st.failures.Add(1)
				log.Printf("record %d: %v", i, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	// 3. Verify ordering invariant
	records, err := list(client, *baseURL)
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].ID >= records[i].ID {
			log.Fatalf("list not ordered by id at %d: %d then %d", i, records[i-1].ID, records[i].ID)
		}
	}

	n := st.requests.Load()
	fmt.Printf("%d requests in %s (%.1f req/s), %d failed cycles, %d records remain\n",
		n, elapsed.Round(time.Millisecond), float64(n)/elapsed.Seconds(), st.failures.Load(), len(records))
}

func cycle(client *http.Client, baseURL string, i int, keep bool, st *stats) error {
	var created record
	if err := call(client, "POST", baseURL+"/health", map[string]string{"message": fmt.Sprintf("stress %d", i)}, http.StatusCreated, &created, st); err != nil {
		return fmt.Errorf("create: %w", err)
	}

	path := fmt.Sprintf("%s/health/%d", baseURL, created.ID)
	var updated record
	if err := call(client, "PUT", path, map[string]string{"message": fmt.Sprintf("stress %d updated", i)}, http.StatusOK, &updated, st); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if updated.CreatedAt != created.CreatedAt {
		return fmt.Errorf("update changed created_at: %s -> %s", created.CreatedAt, updated.CreatedAt)
	}

	if keep {
		return nil
	}
	if err := call(client, "DELETE", path, nil, http.StatusOK, nil, st); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := call(client, "DELETE", path, nil, http.StatusNotFound, nil, st); err != nil {
		return fmt.Errorf("second delete: %w", err)
	}
	return nil
}

func call(client *http.Client, method, url string, payload any, want int, out any, st *stats) error {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	st.requests.Add(1)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d (want %d): %s", resp.StatusCode, want, bytes.TrimSpace(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func list(client *http.Client, baseURL string) ([]record, error) {
	var records []record
	err := call(client, "GET", baseURL+"/health", nil, http.StatusOK, &records, &stats{})
	return records, err
}

func dbCheck(client *http.Client, baseURL string) error {
	var resp struct {
		DB   string `json:"db"`
		Time string `json:"time"`
	}
	if err := call(client, "GET", baseURL+"/db-check", nil, http.StatusOK, &resp, &stats{}); err != nil {
		return err
	}
	log.Printf("database %s, server time %s", resp.DB, resp.Time)
	return nil
}
