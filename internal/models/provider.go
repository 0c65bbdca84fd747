package models

import (
	"net/url"
	"strings"

	"github.com/hashicorp/terraform-plugin-framework/types"
)

type RedfishServer struct {
	User        types.String `tfsdk:"username"`
	Password    types.String `tfsdk:"password"`
	Endpoint    types.String `tfsdk:"endpoint"`
	SslInsecure types.Bool   `tfsdk:"ssl_insecure"`
}

// Host returns the endpoint without scheme and path, so both "https://bmc1"
// and "bmc1" address the same management controller.
func (s RedfishServer) Host() string {
	endpoint := strings.TrimSpace(s.Endpoint.ValueString())
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/")
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

// ProviderModel describes the provider data model.
type ProviderModel struct {
	Username        types.String `tfsdk:"username"`
	Password        types.String `tfsdk:"password"`
	CredentialsFile types.String `tfsdk:"credentials_file"`
	Domain          types.String `tfsdk:"domain"`
}
