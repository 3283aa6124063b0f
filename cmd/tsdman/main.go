package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/avolkov/tsdman/internal/db"
	"github.com/avolkov/tsdman/internal/model"
	"github.com/avolkov/tsdman/internal/session"
	"github.com/avolkov/tsdman/internal/workflow"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

func setupLogger() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	handler := &levelRouter{
		stdout: slog.NewTextHandler(io.Writer(os.Stdout), opts),
		stderr: slog.NewTextHandler(io.Writer(os.Stderr), opts),
	}
	slog.SetDefault(slog.New(handler))
}

// config is resolved from the environment (optionally a .env file).
type config struct {
	baseURL     string
	secret      string
	dbPath      string
	downloadDir string
}

func loadConfig() config {
	cfg := config{
		baseURL:     os.Getenv("TSDMAN_URL"),
		secret:      os.Getenv("TSDMAN_SECRET"),
		dbPath:      os.Getenv("TSDMAN_DB"),
		downloadDir: os.Getenv("TSDMAN_DOWNLOAD_DIR"),
	}
	if cfg.dbPath == "" {
		cfg.dbPath = "tsdman.sqlite3"
	}
	if cfg.downloadDir == "" {
		cfg.downloadDir = "."
	}
	return cfg
}

func usage() {
	fmt.Fprint(os.Stdout, `Usage: tsdman <command> [args]

Commands:
  login                          log in and store the session
  logout                         clear the stored session
  status                         show session validity (local and server)
  scan <identifier>              resolve a scanned order code and show the order
  clients list|add|edit|rm       manage clients
  products list|add|edit|rm|image  manage the catalog
  orders list|show|new|status|item|rm|receipt  manage orders

Environment (a .env file in the working directory is honored):
  TSDMAN_URL           backend base URL (required)
  TSDMAN_SECRET        shared JWT secret for local expiry checks
  TSDMAN_DB            local state database path (default: tsdman.sqlite3)
  TSDMAN_DOWNLOAD_DIR  receipt download directory (default: .)
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	setupLogger()

	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := loadConfig()
	if cfg.baseURL == "" {
		slog.Error("TSDMAN_URL is not set")
		os.Exit(1)
	}

	database, err := db.Open(cfg.dbPath)
	if err != nil {
		slog.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	ctrl := workflow.New(cfg.baseURL, session.NewStore(database), cfg.secret, cfg.downloadDir)
	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		cmdLogin(ctx, ctrl, os.Args[2:])
	case "logout":
		ctrl.Logout(ctx)
		exitOnError(ctrl)
		fmt.Println("logged out")
	case "status":
		cmdStatus(ctx, ctrl)
	case "scan":
		cmdScan(ctx, ctrl, os.Args[2:])
	case "clients":
		cmdClients(ctx, ctrl, os.Args[2:])
	case "products":
		cmdProducts(ctx, ctrl, os.Args[2:])
	case "orders":
		cmdOrders(ctx, ctrl, os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

// exitOnError terminates the process when the last operation left an
// error behind. The controller never propagates failures; this is where
// the CLI surfaces them.
func exitOnError(ctrl *workflow.Controller) {
	if msg := ctrl.State().ErrorMessage; msg != "" {
		slog.Error(msg)
		os.Exit(1)
	}
}

// requireSession restores the stored session and refuses to continue
// without a locally valid one.
func requireSession(ctx context.Context, ctrl *workflow.Controller) {
	if !ctrl.Restore(ctx) {
		slog.Error("no valid session, run: tsdman login")
		os.Exit(1)
	}
}

func cmdLogin(ctx context.Context, ctrl *workflow.Controller, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	fs.Parse(args)

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: tsdman login -user <name> -pass <password>")
		os.Exit(1)
	}

	if !ctrl.Login(ctx, *username, *password) {
		exitOnError(ctrl)
	}
	// A token-decode failure still logs in; surface it as a warning.
	if msg := ctrl.State().ErrorMessage; msg != "" {
		slog.Warn(msg)
	}
	fmt.Println("logged in")
}

func cmdStatus(ctx context.Context, ctrl *workflow.Controller) {
	local := ctrl.SessionValidLocally()
	fmt.Printf("local session: %s\n", validity(local))
	if !local {
		return
	}

	requireSession(ctx, ctrl)
	fmt.Printf("server session: %s\n", validity(ctrl.SessionValidOnServer(ctx)))
}

func validity(ok bool) string {
	if ok {
		return "valid"
	}
	return "invalid"
}

func cmdScan(ctx context.Context, ctrl *workflow.Controller, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: tsdman scan <identifier>")
		os.Exit(1)
	}
	requireSession(ctx, ctrl)

	ctrl.LoadOrderDetails(ctx, args[0])
	exitOnError(ctrl)
	printOrder(ctrl.State().CurrentOrder)
}

func cmdClients(ctx context.Context, ctrl *workflow.Controller, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: tsdman clients <list|add|edit|rm>")
		os.Exit(1)
	}
	requireSession(ctx, ctrl)

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("clients list", flag.ExitOnError)
		query := fs.String("q", "", "name filter")
		fs.Parse(args[1:])

		ctrl.LoadClients(ctx)
		exitOnError(ctrl)
		ctrl.SetSearchQuery(*query)
		ctrl.FilterClients()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tBIRTH DATE\tPHONE\tADDRESS")
		for _, c := range ctrl.State().Clients {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.FullName(), c.BirthDate, c.Phone, c.Address)
		}
		w.Flush()
	case "add", "edit":
		fs := flag.NewFlagSet("clients "+args[0], flag.ExitOnError)
		id := fs.Int64("id", 0, "client id (edit only)")
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		middle := fs.String("middle", "", "middle name")
		birth := fs.String("birth", "", "birth date (YYYY-MM-DD)")
		phone := fs.String("phone", "", "phone")
		address := fs.String("address", "", "address")
		fs.Parse(args[1:])

		client := model.Client{
			FirstName: *first, LastName: *last, MiddleName: *middle,
			BirthDate: *birth, Phone: *phone, Address: *address,
		}
		if args[0] == "add" {
			ctrl.CreateClient(ctx, client)
		} else {
			ctrl.LoadClients(ctx)
			exitOnError(ctrl)
			ctrl.UpdateClient(ctx, *id, client)
		}
		exitOnError(ctrl)
		fmt.Println("ok")
	case "rm":
		fs := flag.NewFlagSet("clients rm", flag.ExitOnError)
		id := fs.Int64("id", 0, "client id")
		fs.Parse(args[1:])

		ctrl.LoadClients(ctx)
		exitOnError(ctrl)
		ctrl.DeleteClient(ctx, *id)
		exitOnError(ctrl)
		fmt.Println("ok")
	default:
		fmt.Fprintf(os.Stderr, "unknown clients subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func cmdProducts(ctx context.Context, ctrl *workflow.Controller, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: tsdman products <list|add|edit|rm|image>")
		os.Exit(1)
	}
	requireSession(ctx, ctrl)

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("products list", flag.ExitOnError)
		skip := fs.Int("skip", 0, "items to skip")
		limit := fs.Int("limit", 100, "page size")
		query := fs.String("q", "", "name filter")
		fs.Parse(args[1:])

		ctrl.LoadProducts(ctx, *skip, *limit)
		exitOnError(ctrl)
		ctrl.SetSearchQuery(*query)
		ctrl.FilterProducts()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK")
		for _, p := range ctrl.State().Products {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Price, p.Stock)
		}
		w.Flush()
	case "add":
		fs := flag.NewFlagSet("products add", flag.ExitOnError)
		name := fs.String("name", "", "product name")
		price := fs.Float64("price", 0, "price")
		stock := fs.Int("stock", 0, "stock")
		photo := fs.String("photo", "", "photo file (jpeg/png)")
		fs.Parse(args[1:])

		file, err := os.Open(*photo)
		if err != nil {
			slog.Error("failed to open photo", "error", err)
			os.Exit(1)
		}
		defer file.Close()

		ctrl.CreateProduct(ctx, *name, *price, *stock, file, filepath.Base(*photo))
		exitOnError(ctrl)
		fmt.Println("ok")
	case "edit":
		fs := flag.NewFlagSet("products edit", flag.ExitOnError)
		name := fs.String("name", "", "current product name")
		newName := fs.String("new-name", "", "new name")
		newPrice := fs.String("new-price", "", "new price")
		newStock := fs.String("new-stock", "", "new stock")
		fs.Parse(args[1:])

		upd := model.ProductUpdate{Name: *name}
		if *newName != "" {
			upd.NewName = newName
		}
		if *newPrice != "" {
			price, err := strconv.ParseFloat(*newPrice, 64)
			if err != nil {
				slog.Error("invalid price", "error", err)
				os.Exit(1)
			}
			upd.NewPrice = &price
		}
		if *newStock != "" {
			stock, err := strconv.Atoi(*newStock)
			if err != nil {
				slog.Error("invalid stock", "error", err)
				os.Exit(1)
			}
			upd.NewStock = &stock
		}

		ctrl.UpdateProduct(ctx, upd)
		exitOnError(ctrl)
		fmt.Println("ok")
	case "image":
		fs := flag.NewFlagSet("products image", flag.ExitOnError)
		name := fs.String("name", "", "product name")
		photo := fs.String("photo", "", "photo file (jpeg/png)")
		fs.Parse(args[1:])

		file, err := os.Open(*photo)
		if err != nil {
			slog.Error("failed to open photo", "error", err)
			os.Exit(1)
		}
		defer file.Close()

		ctrl.UpdateProductImage(ctx, *name, file, filepath.Base(*photo))
		exitOnError(ctrl)
		fmt.Println("ok")
	case "rm":
		fs := flag.NewFlagSet("products rm", flag.ExitOnError)
		id := fs.Int64("id", 0, "product id")
		fs.Parse(args[1:])

		ctrl.LoadProducts(ctx, 0, 100)
		exitOnError(ctrl)
		ctrl.DeleteProduct(ctx, *id)
		exitOnError(ctrl)
		fmt.Println("ok")
	default:
		fmt.Fprintf(os.Stderr, "unknown products subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func cmdOrders(ctx context.Context, ctrl *workflow.Controller, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: tsdman orders <list|show|new|status|item|rm|receipt>")
		os.Exit(1)
	}
	requireSession(ctx, ctrl)

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("orders list", flag.ExitOnError)
		query := fs.String("q", "", "identifier filter")
		fs.Parse(args[1:])

		ctrl.LoadOrders(ctx)
		exitOnError(ctrl)
		ctrl.SetSearchQuery(*query)
		ctrl.FilterOrders()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tIDENTIFIER\tSTATUS\tCLIENT\tITEMS")
		for _, o := range ctrl.State().Orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", o.ID, o.Identifier, o.Status, o.Client.FullName(), len(o.Items))
		}
		w.Flush()
	case "show":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: tsdman orders show <identifier>")
			os.Exit(1)
		}
		ctrl.LoadOrderDetails(ctx, args[1])
		exitOnError(ctrl)
		printOrder(ctrl.State().CurrentOrder)
	case "new":
		fs := flag.NewFlagSet("orders new", flag.ExitOnError)
		clientID := fs.Int64("client", 0, "client id")
		items := fs.String("items", "", "cart as id:qty[,id:qty...]")
		fs.Parse(args[1:])

		if *items == "" {
			fmt.Fprintln(os.Stderr, "usage: tsdman orders new -client <id> -items id:qty[,id:qty...]")
			os.Exit(1)
		}
		for entry := range strings.SplitSeq(*items, ",") {
			id, qty, err := parseCartEntry(entry)
			if err != nil {
				slog.Error("invalid cart entry", "entry", entry, "error", err)
				os.Exit(1)
			}
			for range qty {
				ctrl.IncreaseQuantity(id)
			}
		}

		ctrl.CreateOrder(ctx, *clientID)
		exitOnError(ctrl)
		fmt.Println("ok")
	case "status":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: tsdman orders status <identifier> <pending|ready|shipped>")
			os.Exit(1)
		}
		if !model.ValidOrderStatus(args[2]) {
			slog.Error("unknown status", "status", args[2])
			os.Exit(1)
		}
		ctrl.UpdateOrderStatus(ctx, args[1], args[2])
		exitOnError(ctrl)
		fmt.Println("ok")
	case "item":
		fs := flag.NewFlagSet("orders item", flag.ExitOnError)
		identifier := fs.String("order", "", "order identifier")
		product := fs.String("product", "", "product name")
		quantity := fs.Int("qty", -1, "quantity (0 removes the line)")
		add := fs.Bool("add", false, "add a new line instead of updating")
		fs.Parse(args[1:])

		if *identifier == "" || *product == "" || *quantity < 0 {
			fmt.Fprintln(os.Stderr, "usage: tsdman orders item -order <id> -product <name> -qty <n> [-add]")
			os.Exit(1)
		}
		if *add {
			ctrl.AddItemToOrder(ctx, *identifier, *product, *quantity)
		} else {
			ctrl.UpdateItemQuantity(ctx, *identifier, *product, *quantity)
		}
		exitOnError(ctrl)
		printOrder(ctrl.State().CurrentOrder)
	case "rm":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: tsdman orders rm <identifier>")
			os.Exit(1)
		}
		ctrl.DeleteOrder(ctx, args[1])
		exitOnError(ctrl)
		fmt.Println("ok")
	case "receipt":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: tsdman orders receipt <identifier>")
			os.Exit(1)
		}
		ctrl.DownloadReceipt(ctx, args[1], func(path string) {
			fmt.Printf("saved %s\n", path)
		})
		exitOnError(ctrl)
	default:
		fmt.Fprintf(os.Stderr, "unknown orders subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

// parseCartEntry parses one "productID:quantity" pair.
func parseCartEntry(entry string) (int64, int, error) {
	idStr, qtyStr, found := strings.Cut(strings.TrimSpace(entry), ":")
	if !found {
		return 0, 0, fmt.Errorf("expected id:qty")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing product id: %w", err)
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing quantity: %w", err)
	}
	if qty < 1 {
		return 0, 0, fmt.Errorf("quantity must be at least 1")
	}
	return id, qty, nil
}

func printOrder(order *model.Order) {
	if order == nil {
		fmt.Println("no order loaded")
		return
	}

	fmt.Printf("order %s (#%d): %s\n", order.Identifier, order.ID, order.Status)
	fmt.Printf("client: %s\n", order.Client.FullName())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE")
	for _, item := range order.Items {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", item.Product.Name, item.Quantity, item.Product.Price)
	}
	w.Flush()
}
