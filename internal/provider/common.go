package provider

import (
	"errors"
	"fmt"
	"time"

	"terraform-provider-efibootorder/internal/bmc"
	"terraform-provider-efibootorder/internal/bootorder"
	"terraform-provider-efibootorder/internal/models"
	"terraform-provider-efibootorder/internal/remediation"

	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework/attr"
	datasourceSchema "github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	resourceSchema "github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/stmcginnis/gofish/redfish"
)

const (
	redfishServerMD string = "List of server BMCs and their respective user credentials"
	bootOrderName   string = "boot_order"
	rulesMD         string = "Substrings identifying the network (PXE), disk and EFI shell boot entries."
)

// mutexPool serializes work on the same management endpoint across resources.
var mutexPool = remediation.InitSyncPoolInstance()

// RedfishServerDatasourceSchema to construct schema of redfish server
func RedfishServerDatasourceSchema() map[string]datasourceSchema.Attribute {
	return map[string]datasourceSchema.Attribute{
		"username": datasourceSchema.StringAttribute{
			Optional:    true,
			Description: "User name for login",
		},
		"password": datasourceSchema.StringAttribute{
			Optional:    true,
			Description: "User password for login",
			Sensitive:   true,
		},
		"endpoint": datasourceSchema.StringAttribute{
			Required:    true,
			Description: "Server BMC IP address or hostname",
		},
		"ssl_insecure": datasourceSchema.BoolAttribute{
			Optional:    true,
			Description: "This field indicates whether the SSL/TLS certificate must be verified or not",
		},
	}
}

func RedfishServerSchema() map[string]resourceSchema.Attribute {
	return map[string]resourceSchema.Attribute{
		"username": resourceSchema.StringAttribute{
			Optional:    true,
			Description: "User name for login",
		},
		"password": resourceSchema.StringAttribute{
			Optional:    true,
			Description: "User password for login",
			Sensitive:   true,
		},
		"endpoint": resourceSchema.StringAttribute{
			Required:    true,
			Description: "Server BMC IP address or hostname",
		},
		"ssl_insecure": resourceSchema.BoolAttribute{
			Optional:    true,
			Description: "This field indicates whether the SSL/TLS certificate must be verified or not",
		},
	}
}

// RedfishServerDatasourceBlockMap to construct common lock map for data sources
func RedfishServerDatasourceBlockMap() map[string]datasourceSchema.Block {
	return map[string]datasourceSchema.Block{
		"server": datasourceSchema.ListNestedBlock{
			MarkdownDescription: redfishServerMD,
			Description:         redfishServerMD,
			Validators: []validator.List{
				listvalidator.SizeAtMost(1),
				listvalidator.IsRequired(),
			},
			NestedObject: datasourceSchema.NestedBlockObject{
				Attributes: RedfishServerDatasourceSchema(),
			},
		},
	}
}

func RedfishServerResourceBlockMap() map[string]resourceSchema.Block {
	return map[string]resourceSchema.Block{
		"server": resourceSchema.ListNestedBlock{
			MarkdownDescription: redfishServerMD,
			Description:         redfishServerMD,
			Validators: []validator.List{
				listvalidator.SizeAtMost(1),
				listvalidator.IsRequired(),
			},
			NestedObject: resourceSchema.NestedBlockObject{
				Attributes: RedfishServerSchema(),
			},
		},
	}
}

// bootOrderSettings are the attributes shared by the boot order resource and
// data source.
type bootOrderSettings struct {
	Rules        *models.BootOrderRules
	Profile      types.String
	OemPath      types.String
	OemKey       types.String
	ResetType    types.String
	ResetTimeout types.Int64
}

func resolveCredentials(pconfig *EfibootorderProvider, rserver models.RedfishServer) (bmc.Credentials, error) {
	var creds bmc.Credentials

	if len(rserver.User.ValueString()) > 0 {
		creds.Username = rserver.User.ValueString()
	} else if pconfig != nil && len(pconfig.Username) > 0 {
		creds.Username = pconfig.Username
	}

	if len(rserver.Password.ValueString()) > 0 {
		creds.Password = rserver.Password.ValueString()
	} else if pconfig != nil && len(pconfig.Password) > 0 {
		creds.Password = pconfig.Password
	}

	if len(creds.Username) > 0 && len(creds.Password) > 0 {
		return creds, nil
	}

	if pconfig != nil && len(pconfig.CredentialsFile) > 0 {
		return bmc.LoadCredentials(pconfig.CredentialsFile)
	}

	return creds, fmt.Errorf("error. Either provide username and password at provider level, resource level or through credentials_file. Please check your configuration")
}

func rulesFromModel(rules *models.BootOrderRules) (bootorder.RuleSet, error) {
	fragments := map[bootorder.DeviceClass]string{
		bootorder.Network: bootorder.DefaultNetworkMatch,
		bootorder.Disk:    bootorder.DefaultDiskMatch,
		bootorder.Shell:   bootorder.DefaultShellMatch,
	}

	if rules != nil {
		if !rules.Network.IsNull() && !rules.Network.IsUnknown() {
			fragments[bootorder.Network] = rules.Network.ValueString()
		}
		if !rules.Disk.IsNull() && !rules.Disk.IsUnknown() {
			fragments[bootorder.Disk] = rules.Disk.ValueString()
		}
		if !rules.Shell.IsNull() && !rules.Shell.IsUnknown() {
			fragments[bootorder.Shell] = rules.Shell.ValueString()
		}
	}

	return bootorder.NewSubstringRules(fragments)
}

func clientConfig(pconfig *EfibootorderProvider, rserver models.RedfishServer, settings bootOrderSettings) bmc.Config {
	cfg := bmc.DefaultConfig()
	cfg.Domain = ""
	if pconfig != nil {
		cfg.Domain = pconfig.Domain
	}
	cfg.Insecure = rserver.SslInsecure.ValueBool()

	if v := settings.Profile.ValueString(); v != "" {
		cfg.Profile = v
	}
	if v := settings.OemPath.ValueString(); v != "" {
		cfg.OemPath = v
	}
	if v := settings.OemKey.ValueString(); v != "" {
		cfg.OemKey = v
	}
	if v := settings.ResetType.ValueString(); v != "" {
		cfg.ResetType = redfish.ResetType(v)
	}
	if v := settings.ResetTimeout.ValueInt64(); v > 0 {
		cfg.ResetTimeout = time.Duration(v) * time.Second
	}

	return cfg
}

// NewBootOrderClient returns a client for the first server block together with
// the host name the client expects.
func NewBootOrderClient(pconfig *EfibootorderProvider, rserver *[]models.RedfishServer, settings bootOrderSettings) (*bmc.Client, string, error) {
	if rserver == nil || len(*rserver) == 0 {
		return nil, "", errors.New("redfish server config not present")
	}
	rserver1 := (*rserver)[0]

	host := rserver1.Host()
	if host == "" {
		return nil, "", errors.New("redfish server endpoint must not be empty")
	}

	creds, err := resolveCredentials(pconfig, rserver1)
	if err != nil {
		return nil, "", err
	}

	client, err := bmc.New(creds, clientConfig(pconfig, rserver1, settings))
	if err != nil {
		return nil, "", err
	}

	return client, host, nil
}

func orderToList(order bootorder.Order) (types.List, diag.Diagnostics) {
	values := make([]attr.Value, 0, len(order))
	for _, entry := range order {
		values = append(values, types.StringValue(string(entry)))
	}
	return types.ListValue(types.StringType, values)
}
