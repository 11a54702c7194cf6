package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/importer"
	productrepo "storefront/internal/repository/product"
	userrepo "storefront/internal/repository/user"

	"golang.org/x/crypto/bcrypt"
)

//go:embed demo_catalog.csv
var demoCatalog []byte

// Account is a seeded login.
type Account struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// DefaultAccounts are the logins created when the caller passes none.
var DefaultAccounts = []Account{
	{Email: "admin@storefront.local", Password: "admin1234", Name: "Admin", Role: domain.RoleAdmin},
	{Email: "shopper@storefront.local", Password: "shopper1234", Name: "Demo Shopper", Role: domain.RoleUser},
}

// Apply loads the demo catalog and creates accounts. It is idempotent: the catalog
// is upserted and existing accounts are left untouched.
func Apply(ctx context.Context, pool db.Pool, logger *log.Logger, loc *time.Location, accounts []Account) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if accounts == nil {
		accounts = DefaultAccounts
	}

	imp := importer.NewCSVImporter(bytes.NewReader(demoCatalog), pool, productrepo.NewPostgres(pool, logger), loc)
	stats, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("import demo catalog: %w", err)
	}
	logger.Printf("seed: catalog products=%d variants=%d options=%d", stats.Products, stats.Variants, stats.Options)

	users := userrepo.NewPostgres(pool, logger)
	for _, a := range accounts {
		created, err := ensureAccount(ctx, users, a)
		if err != nil {
			return fmt.Errorf("create account %s: %w", a.Email, err)
		}
		if created {
			logger.Printf("seed: account created email=%s role=%s", a.Email, a.Role)
		}
	}
	return nil
}

func ensureAccount(ctx context.Context, users userrepo.Repository, a Account) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	_, err = users.Create(ctx, domain.User{Email: a.Email, PasswordHash: string(hash), Name: a.Name, Role: a.Role})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return false, nil
	}
	return err == nil, err
}
