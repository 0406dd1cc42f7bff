package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/models"
	"github.com/webnovauz/paint-management-backend/utils"
)

const testDatabaseName = "paint_test"

// setupIntegration starts fresh mysql and redis containers, points config at
// them and migrates the schema. It skips unless INTEGRATION_TESTS is set.
func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", testDatabaseName)
	t.Setenv("PHONE_REGION", "")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}
	models.MigrateTable()

	return utils.SetUserNameInContext(context.Background(), "Test")
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("paint-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("paint-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE="+testDatabaseName,
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}

// seedPaint creates a category, a paint and an opening purchase of stock.
func seedPaint(t *testing.T, ctx context.Context, sku string, productType models.ProductType, stock string) *models.Paint {
	t.Helper()
	category, err := models.CreatePaintCategory(ctx, &models.NewPaintCategory{Name: "Category " + sku})
	if err != nil {
		t.Fatalf("CreatePaintCategory: %v", err)
	}
	unit := models.PaintUnitKilogram
	if productType == models.ProductTypePiece {
		unit = models.PaintUnitPiece
	}
	paint, err := models.CreatePaint(ctx, &models.NewPaint{
		Name:          "Enamel " + sku,
		CategoryId:    category.ID,
		Color:         "White",
		Brand:         "Test",
		Unit:          unit,
		ProductType:   productType,
		CostPrice:     d("80"),
		SellingPrice:  d("100"),
		Sku:           sku,
		MinStockLevel: d("1"),
	})
	if err != nil {
		t.Fatalf("CreatePaint: %v", err)
	}
	if stock != "" {
		supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Supplier " + sku})
		if err != nil {
			t.Fatalf("CreateSupplier: %v", err)
		}
		_, err = models.CreatePurchase(ctx, &models.NewPurchase{
			SupplierId: supplier.ID,
			Items: []models.NewPurchaseItem{
				{PaintId: paint.ID, Quantity: d(stock), UnitCost: d("80")},
			},
		})
		if err != nil {
			t.Fatalf("CreatePurchase: %v", err)
		}
	}
	return paint
}

func countRows(t *testing.T, ctx context.Context, model any, query string, args ...any) int64 {
	t.Helper()
	var count int64
	if err := config.GetDB().WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}
