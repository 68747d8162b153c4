package test

import (
	"context"
	"fmt"

	gtindata "github.com/gtindata/gtindata-go"
	"github.com/gtindata/gtindata-go/credential"
	"github.com/gtindata/gtindata-go/session"
)

// ExampleNew demonstrates client construction with a file-backed
// credential store.
func ExampleNew() {
	store, _ := credential.NewFile("/tmp/gtindata/credential")

	client, _ := gtindata.New().
		WithBaseURL("https://api.gtindata.com").
		WithCredentials(store).
		Build()
	_ = client
}

// ExampleController_Boot shows startup session reconstruction and the
// branch a frontend takes on each outcome.
func ExampleController_Boot() {
	var ctrl *session.Controller

	snap := ctrl.Boot(context.Background())
	switch {
	case snap.LoggedIn():
		fmt.Println("welcome back,", snap.Identity.Email)
	case snap.Err != nil:
		fmt.Println("backend unreachable, retry:", snap.Err)
	default:
		fmt.Println("show the login form")
	}
}

// ExampleClient_Login shows typed error handling on a login call.
func ExampleClient_Login() {
	var client *gtindata.Client

	_, err := client.Login(context.Background(), gtindata.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if apiErr := gtindata.AsAPIError(err); apiErr != nil {
		fmt.Println(apiErr.UserMessage())
	}
}
