package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lpellerin/invento/internal/client"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: stockcli [-server URL] <command> [args]

Commands:
  register <name> <surname> <email> <password>
  login    <email> <password>
  logout
  profile
  list
  add      <name> <description> <price> <quantity>
  update   <id> [-name N] [-description D] [-price P] [-quantity Q]
  delete   <id>
  watch`)
	os.Exit(2)
}

func main() {
	server := flag.String("server", "http://localhost:8080", "backend base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}

	storage, err := client.NewFileTokenStorage("")
	if err != nil {
		log.Fatalf("token storage: %v", err)
	}

	store, err := client.NewStore(client.NewAPI(*server), storage)
	if err != nil {
		log.Fatalf("state store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	args := flag.Args()
	switch args[0] {
	case "register":
		if len(args) != 5 {
			usage()
		}
		run(store.Register(ctx, client.RegisterInput{
			Name: args[1], Surname: args[2], Email: args[3], Password: args[4],
		}))
		fmt.Println("Registered and signed in.")

	case "login":
		if len(args) != 3 {
			usage()
		}
		run(store.Login(ctx, args[1], args[2]))
		fmt.Println("Signed in.")

	case "logout":
		run(store.Logout())
		fmt.Println("Signed out.")

	case "profile":
		requireSession(store)
		run(store.FetchProfile(ctx))
		c := store.Session().Client
		fmt.Printf("%s %s <%s> (since %s)\n", c.Surname, c.Name, c.Email, c.CreatedAt.Format("2006-01-02"))

	case "list":
		requireSession(store)
		run(store.FetchArticles(ctx))
		for _, a := range store.Articles().Items {
			fmt.Printf("%s  %-24s  %8.2f  x%d\n", a.ID, a.Name, a.Price, a.Quantity)
		}

	case "add":
		if len(args) != 5 {
			usage()
		}
		requireSession(store)
		var price float64
		var quantity int
		if _, err := fmt.Sscanf(args[3], "%f", &price); err != nil {
			log.Fatalf("invalid price %q", args[3])
		}
		if _, err := fmt.Sscanf(args[4], "%d", &quantity); err != nil {
			log.Fatalf("invalid quantity %q", args[4])
		}
		run(store.CreateArticle(ctx, client.ArticleInput{
			Name: args[1], Description: args[2], Price: &price, Quantity: &quantity,
		}))
		fmt.Println("Article created.")

	case "update":
		if len(args) < 2 {
			usage()
		}
		requireSession(store)
		patch := parsePatch(args[2:])
		run(store.UpdateArticle(ctx, args[1], patch))
		fmt.Println("Article updated.")

	case "delete":
		if len(args) != 2 {
			usage()
		}
		requireSession(store)
		run(store.DeleteArticle(ctx, args[1]))
		fmt.Println("Article deleted.")

	case "watch":
		requireSession(store)
		watch(*server, store.Session().Token)

	default:
		usage()
	}
}

func run(err error) {
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func requireSession(store *client.Store) {
	if !store.Session().Authenticated() {
		log.Fatal("not signed in; run `stockcli login` first")
	}
}

func parsePatch(args []string) client.ArticlePatch {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	name := fs.String("name", "", "new name")
	description := fs.String("description", "", "new description")
	price := fs.Float64("price", -1, "new price")
	quantity := fs.Int("quantity", -1, "new stock quantity")
	fs.Parse(args)

	var patch client.ArticlePatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "description":
			patch.Description = description
		case "price":
			patch.Price = price
		case "quantity":
			patch.Quantity = quantity
		}
	})
	return patch
}

// watch streams the account's websocket notifications until interrupted.
func watch(server, token string) {
	wsURL := "ws" + server[len("http"):] + "/api/ws?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fmt.Println(string(message))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}
