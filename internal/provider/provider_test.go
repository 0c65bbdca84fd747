// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"terraform-provider-efibootorder/internal/bmc"
	"terraform-provider-efibootorder/internal/bootorder"

	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/hashicorp/terraform-plugin-go/tfprotov6"
	"github.com/joho/godotenv"
)

var (
	creds TestingServerCredentials
)

type TestingServerCredentials struct {
	Username string
	Password string
	Endpoint string
	Insecure bool
}

// testAccProtoV6ProviderFactories are used to instantiate a provider during
// acceptance testing. The factory function will be invoked for every Terraform
// CLI command executed to create a provider server to which the CLI can
// reattach.
var testAccProtoV6ProviderFactories = map[string]func() (tfprotov6.ProviderServer, error){
	"efibootorder": providerserver.NewProtocol6WithError(New("test")()),
}

func testAccPreCheck(t *testing.T) {
	if creds.Endpoint == "" || creds.Username == "" || creds.Password == "" {
		t.Fatal("TF_TESTING_ENDPOINT, TF_TESTING_USERNAME and TF_TESTING_PASSWORD must be set for acceptance tests")
	}
}

func testAccClient(creds TestingServerCredentials) (*bmc.Client, error) {
	cfg := bmc.DefaultConfig()
	cfg.Domain = ""
	cfg.Insecure = true
	return bmc.New(bmc.Credentials{Username: creds.Username, Password: creds.Password}, cfg)
}

// testAccBreakBootOrder moves the EFI shell entry to the front of the boot
// order, so the resource has something to fix.
func testAccBreakBootOrder(creds TestingServerCredentials) {
	client, err := testAccClient(creds)
	if err != nil {
		log.Printf("Client setup reported error %s", err.Error())
		return
	}

	ctx := context.Background()
	order, err := client.Fetch(ctx, creds.Endpoint)
	if err != nil {
		log.Printf("Fetch from %s reported error %s", creds.Endpoint, err.Error())
		return
	}

	positions, err := bootorder.Classify(order, bootorder.DefaultRules())
	if err != nil {
		log.Printf("Boot order of %s cannot be classified: %s", creds.Endpoint, err.Error())
		return
	}

	shell := positions[bootorder.Shell]
	broken := append(bootorder.Order{order[shell]}, append(order[:shell:shell], order[shell+1:]...)...)
	if err := client.Write(ctx, creds.Endpoint, broken); err != nil {
		log.Printf("Write to %s reported error %s", creds.Endpoint, err.Error())
	}
}

func init() {
	err := godotenv.Load("redfish_test.env")
	if err != nil {
		fmt.Println(err.Error())
	}

	creds = TestingServerCredentials{
		Username: os.Getenv("TF_TESTING_USERNAME"),
		Password: os.Getenv("TF_TESTING_PASSWORD"),
		Endpoint: os.Getenv("TF_TESTING_ENDPOINT"),
		Insecure: false,
	}
}
