package poste

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"postefleet/internal/metrics"
	"postefleet/internal/orchestration"
	"postefleet/internal/platform/docker"
)

// User is one account record from the user-source file. Extra fields in
// the source are ignored.
type User struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// sourceFile is the JSON user-source layout: {"users":[...]}.
type sourceFile struct {
	Users []User `json:"users"`
}

// LoadUsers reads the user-source file.
func LoadUsers(path string) ([]User, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}
	var src sourceFile
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse user file: %w", err)
	}
	if len(src.Users) == 0 {
		return nil, fmt.Errorf("user file %s contains no users", path)
	}
	return src.Users, nil
}

// Strategy names reported in the run summary.
const (
	StrategyBatch   = "batch-script"
	StrategyWorkers = "parallel-workers"
)

// fallbackSentinel in the batch script's output switches provisioning
// to the parallel worker strategy. Coupled to the script's wording.
const fallbackSentinel = "FALLBACK_NEEDED"

// Paths the batch strategy uses inside the container.
const (
	scriptDir  = "/tmp"
	scriptPath = "/tmp/bulk_create.php"
	csvPath    = "/tmp/bulk_users.csv"
)

// domainBatchSize throttles concurrent domain:create calls.
const domainBatchSize = 10

// Summary is the per-run accounts result file.
type Summary struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Strategy    string              `json:"strategy"`
	Domains     map[string][]string `json:"domains"`
	Statistics  Statistics          `json:"statistics"`
}

// Statistics aggregates provisioning outcomes. Created plus failed
// always accounts for every attempted user/domain combination.
type Statistics struct {
	DomainsCreated int `json:"domains_created"`
	DomainsFailed  int `json:"domains_failed"`
	UsersCreated   int `json:"users_created"`
	UsersFailed    int `json:"users_failed"`
}

// Write persists the summary JSON.
func (s *Summary) Write(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}
	return nil
}

// Provisioner creates mail domains and accounts in bulk on one instance.
type Provisioner struct {
	rt docker.Runtime

	// Workers is the chunk count for the parallel worker strategy.
	Workers int
}

// NewProvisioner returns a provisioner with default parallelism.
func NewProvisioner(rt docker.Runtime) *Provisioner {
	return &Provisioner{rt: rt, Workers: 4}
}

// EnsureDomains creates the given mail domains, at most domainBatchSize
// concurrently. Failures are counted, not fatal.
func (p *Provisioner) EnsureDomains(ctx context.Context, container string, domains []string) (created, failed int) {
	console := NewConsole(p.rt, container)
	tasks := make([]orchestration.Task, 0, len(domains))
	for _, domain := range domains {
		tasks = append(tasks, orchestration.Task{
			Name: "domain:create " + domain,
			Func: func(ctx context.Context) error {
				return console.DomainCreate(ctx, domain)
			},
		})
	}
	results := orchestration.RunBounded(ctx, tasks, domainBatchSize, false)
	failed = orchestration.Failed(results)
	return len(domains) - failed, failed
}

// Provision creates every user under every domain on the instance and
// returns the run summary. The strategy is chosen once per run by a
// compatibility probe of the uploaded batch script.
func (p *Provisioner) Provision(ctx context.Context, container string, domains []string, users []User) (*Summary, error) {
	summary := &Summary{
		GeneratedAt: time.Now().UTC(),
		Domains:     make(map[string][]string, len(domains)),
	}

	created, failedDomains := p.EnsureDomains(ctx, container, domains)
	summary.Statistics.DomainsCreated = created
	summary.Statistics.DomainsFailed = failedDomains

	summary.Strategy = p.chooseStrategy(ctx, container)
	log.Printf("Provisioning %d users x %d domains on %s using %s", len(users), len(domains), container, summary.Strategy)

	for _, domain := range domains {
		var ok, bad int
		switch summary.Strategy {
		case StrategyBatch:
			ok, bad = p.provisionBatch(ctx, container, domain, users)
		default:
			ok, bad = p.provisionWorkers(ctx, container, domain, users)
		}
		summary.Statistics.UsersCreated += ok
		summary.Statistics.UsersFailed += bad

		addresses := make([]string, 0, len(users))
		for _, user := range users {
			addresses = append(addresses, RewriteAddress(user.Email, domain))
		}
		summary.Domains[domain] = addresses
	}

	metrics.AccountsCreated.Add(float64(summary.Statistics.UsersCreated))
	metrics.AccountsFailed.Add(float64(summary.Statistics.UsersFailed))
	return summary, nil
}

// chooseStrategy uploads the batch script and probes it. Any failure
// selects the worker fallback.
func (p *Provisioner) chooseStrategy(ctx context.Context, container string) string {
	archive, err := docker.TarFile("bulk_create.php", []byte(bulkCreateScript), 0o755)
	if err != nil {
		return StrategyWorkers
	}
	if err := p.rt.CopyTo(ctx, container, scriptDir, archive); err != nil {
		log.Printf("Batch script upload failed, falling back to workers: %v", err)
		return StrategyWorkers
	}

	result, err := p.rt.Exec(ctx, container, []string{"php", scriptPath, "--probe"})
	if err != nil || result.ExitCode != 0 || strings.Contains(result.Combined(), fallbackSentinel) {
		return StrategyWorkers
	}
	return StrategyBatch
}

// provisionBatch runs the uploaded in-process script for one domain and
// parses its trailing "SUCCESS|FAILED" line. Any failure to run or parse
// counts every user as failed.
func (p *Provisioner) provisionBatch(ctx context.Context, container, domain string, users []User) (int, int) {
	csvData, err := buildCSV(users, domain)
	if err != nil {
		return 0, len(users)
	}
	archive, err := docker.TarFile("bulk_users.csv", csvData, 0o644)
	if err != nil {
		return 0, len(users)
	}
	if err := p.rt.CopyTo(ctx, container, scriptDir, archive); err != nil {
		log.Printf("CSV upload to %s failed: %v", container, err)
		return 0, len(users)
	}

	result, err := p.rt.Exec(ctx, container, []string{"php", scriptPath, domain, csvPath})
	if err != nil {
		log.Printf("Batch script on %s failed: %v", container, err)
		return 0, len(users)
	}

	ok, bad, err := parseBatchCounts(result.Stdout)
	if err != nil {
		log.Printf("Unparseable batch output on %s: %v", container, err)
		return 0, len(users)
	}
	return ok, bad
}

var batchCountLine = regexp.MustCompile(`^(\d+)\|(\d+)$`)

// parseBatchCounts extracts the trailing SUCCESS|FAILED counters.
func parseBatchCounts(output string) (int, int, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		match := batchCountLine.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if match == nil {
			continue
		}
		ok, _ := strconv.Atoi(match[1])
		bad, _ := strconv.Atoi(match[2])
		return ok, bad, nil
	}
	return 0, 0, fmt.Errorf("no count line in output %q", output)
}

func buildCSV(users []User, domain string) ([]byte, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, user := range users {
		if err := w.Write([]string{RewriteAddress(user.Email, domain), user.Password, user.FullName}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// provisionWorkers splits the user list into p.Workers chunks executed
// concurrently, each worker creating its accounts one console call at a
// time. Per-user failures are counted, not fatal.
func (p *Provisioner) provisionWorkers(ctx context.Context, container, domain string, users []User) (int, int) {
	console := NewConsole(p.rt, container)

	var created, failed atomic.Int64
	chunks := chunkUsers(users, p.Workers)
	tasks := make([]orchestration.Task, 0, len(chunks))
	for i, chunk := range chunks {
		tasks = append(tasks, orchestration.Task{
			Name: fmt.Sprintf("worker-%d %s", i, domain),
			Func: func(ctx context.Context) error {
				for _, user := range chunk {
					address := RewriteAddress(user.Email, domain)
					if err := console.EmailCreate(ctx, address, user.Password, user.FullName); err != nil {
						failed.Add(1)
						continue
					}
					created.Add(1)
				}
				return nil
			},
		})
	}
	orchestration.RunBounded(ctx, tasks, len(tasks), false)
	return int(created.Load()), int(failed.Load())
}

// chunkUsers splits users into at most n non-empty chunks.
func chunkUsers(users []User, n int) [][]User {
	if n < 1 {
		n = 1
	}
	if n > len(users) {
		n = len(users)
	}
	chunks := make([][]User, 0, n)
	size := (len(users) + n - 1) / n
	for start := 0; start < len(users); start += size {
		end := start + size
		if end > len(users) {
			end = len(users)
		}
		chunks = append(chunks, users[start:end])
	}
	return chunks
}
