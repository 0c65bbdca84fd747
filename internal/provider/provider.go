// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"

	"terraform-provider-efibootorder/internal/models"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure EfibootorderProvider satisfies various provider interfaces.
var _ provider.Provider = &EfibootorderProvider{}

// EfibootorderProvider defines the provider implementation.
type EfibootorderProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version         string
	Username        string
	Password        string
	CredentialsFile string
	Domain          string
}

func (p *EfibootorderProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "efibootorder_"
	resp.Version = p.version
}

func (p *EfibootorderProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		Attributes: map[string]schema.Attribute{
			"username": schema.StringAttribute{
				Description: "Username accessing Redfish API",
				Optional:    true,
			},
			"password": schema.StringAttribute{
				Description: "Password related to given user name accessing Redfish API",
				Optional:    true,
				Sensitive:   true,
			},
			"credentials_file": schema.StringAttribute{
				Description: "File containing 'user:password' used when no username and password are configured, e.g. ~/.ipmicreds",
				Optional:    true,
			},
			"domain": schema.StringAttribute{
				Description: "Domain appended to server endpoints which do not contain 'ipmi'. Endpoints are used as given when not set.",
				Optional:    true,
			},
		},
	}
}

func (p *EfibootorderProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data models.ProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)

	if resp.Diagnostics.HasError() {
		return
	}

	// Configuration values are now available.
	if data.Username.IsUnknown() {
		resp.Diagnostics.AddWarning(
			"Unable to create client as username is missing",
			"Cannot use unknown value",
		)
	}

	if data.Password.IsUnknown() {
		resp.Diagnostics.AddWarning(
			"Unable to create client as password is missing",
			"Cannot use unknown value",
		)
	}

	p.Username = data.Username.ValueString()
	p.Password = data.Password.ValueString()
	p.CredentialsFile = data.CredentialsFile.ValueString()
	p.Domain = data.Domain.ValueString()

	resp.ResourceData = p
	resp.DataSourceData = p

	tflog.Trace(ctx, "Finished configuring the provider")
}

func (p *EfibootorderProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewBootOrderResource,
	}
}

func (p *EfibootorderProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewBootOrderDataSource,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &EfibootorderProvider{
			version: version,
		}
	}
}
