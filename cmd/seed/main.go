package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/eatsmart-resto/api/internal/database"
	"github.com/eatsmart-resto/api/internal/enum"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type seedItem struct {
	name        string
	description string
	price       string
	category    string
	image       string
}

// seedMenu is the sample carte: three starters, three mains, three desserts,
// three drinks.
var seedMenu = []seedItem{
	{
		name:        "Foie Gras Maison",
		description: "Foie gras mi-cuit, chutney de figues et pain brioché toasté",
		price:       "18.50",
		category:    enum.CategoryStarters,
		image:       "https://images.pexels.com/photos/8696567/pexels-photo-8696567.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Salade de Chèvre Chaud",
		description: "Salade verte, toasts de chèvre, miel, noix et vinaigrette balsamique",
		price:       "12.90",
		category:    enum.CategoryStarters,
		image:       "https://images.pexels.com/photos/5419336/pexels-photo-5419336.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Carpaccio de Saint-Jacques",
		description: "Fines tranches de Saint-Jacques, huile d'olive citronnée et fleur de sel",
		price:       "16.90",
		category:    enum.CategoryStarters,
		image:       "https://images.pexels.com/photos/4553031/pexels-photo-4553031.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Filet de Bœuf Rossini",
		description: "Filet de bœuf, escalope de foie gras poêlée, sauce aux truffes et purée maison",
		price:       "32.50",
		category:    enum.CategoryMains,
		image:       "https://images.pexels.com/photos/361184/asparagus-steak-veal-steak-veal-361184.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Magret de Canard",
		description: "Magret de canard rôti, sauce au miel et aux épices, pommes de terre sarladaises",
		price:       "26.90",
		category:    enum.CategoryMains,
		image:       "https://images.pexels.com/photos/6607314/pexels-photo-6607314.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Risotto aux Cèpes",
		description: "Risotto crémeux aux cèpes et parmesan, huile de truffe",
		price:       "22.90",
		category:    enum.CategoryMains,
		image:       "https://images.pexels.com/photos/6419736/pexels-photo-6419736.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Crème Brûlée à la Vanille",
		description: "Crème brûlée à la vanille de Madagascar",
		price:       "9.90",
		category:    enum.CategoryDesserts,
		image:       "https://images.pexels.com/photos/8250190/pexels-photo-8250190.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Fondant au Chocolat",
		description: "Fondant au chocolat noir, cœur coulant et glace vanille",
		price:       "10.50",
		category:    enum.CategoryDesserts,
		image:       "https://images.pexels.com/photos/5386673/pexels-photo-5386673.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Tarte Tatin",
		description: "Tarte tatin aux pommes caramélisées et crème fraîche",
		price:       "9.50",
		category:    enum.CategoryDesserts,
		image:       "https://images.pexels.com/photos/6133305/pexels-photo-6133305.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Vin Rouge - Bordeaux Saint-Émilion",
		description: "Bouteille 75cl, Grand cru classé",
		price:       "45.00",
		category:    enum.CategoryDrinks,
		image:       "https://images.pexels.com/photos/2912108/pexels-photo-2912108.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Vin Blanc - Chablis",
		description: "Bouteille 75cl, Domaine William Fèvre",
		price:       "38.00",
		category:    enum.CategoryDrinks,
		image:       "https://images.pexels.com/photos/1123260/pexels-photo-1123260.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
	{
		name:        "Eau Minérale",
		description: "Bouteille 75cl, plate ou gazeuse",
		price:       "4.50",
		category:    enum.CategoryDrinks,
		image:       "https://images.pexels.com/photos/327090/pexels-photo-327090.jpeg?auto=compress&cs=tinysrgb&w=800",
	},
}

func main() {
	_ = godotenv.Load()

	email := flag.String("email", envOr("SEED_EMAIL", "admin@eatsmart.fr"), "admin email")
	password := flag.String("password", envOr("SEED_PASSWORD", "admin123"), "admin password")
	fullName := flag.String("name", envOr("SEED_NAME", "Admin"), "admin full name")
	resetMenu := flag.Bool("reset-menu", true, "replace the menu with the sample carte")
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("ERROR: create connection pool: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(databaseURL); err != nil {
		log.Fatalf("ERROR: run migrations: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("ERROR: begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	queries := database.New(tx)

	if err := seedAdmin(ctx, queries, *email, *password, *fullName); err != nil {
		log.Fatalf("ERROR: seed admin: %v", err)
	}

	if *resetMenu {
		if err := seedCatalog(ctx, queries); err != nil {
			log.Fatalf("ERROR: seed menu: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("ERROR: commit: %v", err)
	}

	log.Println("seed complete")
}

// seedAdmin creates the staff account unless it already exists, so the
// seeder is safe to run repeatedly.
func seedAdmin(ctx context.Context, queries *database.Queries, email, password, fullName string) error {
	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		log.Printf("user %s already exists, skipping", email)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := queries.CreateUser(ctx, database.CreateUserParams{
		Email:          email,
		HashedPassword: string(hash),
		FullName:       fullName,
	})
	if err != nil {
		return err
	}

	log.Printf("created user %s (%s)", user.Email, user.ID)
	return nil
}

// seedCatalog replaces whatever is in the catalog with the sample carte.
func seedCatalog(ctx context.Context, queries *database.Queries) error {
	deleted, err := queries.DeleteAllMenuItems(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("removed %d existing menu items", deleted)
	}

	for _, it := range seedMenu {
		price, err := parsePrice(it.price)
		if err != nil {
			return err
		}
		created, err := queries.CreateMenuItem(ctx, database.CreateMenuItemParams{
			Name:        it.name,
			Description: it.description,
			Price:       price,
			Category:    it.category,
			Available:   true,
			Image:       it.image,
		})
		if err != nil {
			return err
		}
		log.Printf("created menu item %s (%s)", created.Name, created.ID)
	}

	return nil
}

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
