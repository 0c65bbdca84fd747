package remediation

import (
	"context"
	"errors"
	"sync"

	"terraform-provider-efibootorder/internal/bootorder"
)

const (
	pxe   = "UEFI Network:(B1/D0/F0) UEFI PXE IPv4: Intel(R) Ethernet Controller E810-XXV"
	pxe2  = "UEFI Network:(B2/D0/F0) UEFI PXE IPv4: Broadcom NetXtreme"
	disk  = "UEFI Hard Disk:ubuntu"
	shell = "UEFI AP:UEFI: Built-in EFI Shell"
	usb   = "UEFI USB Key"
	cdrom = "UEFI CD/DVD"
)

var errUnreachable = errors.New("connection refused")

// fakeClient keeps one boot order per host in memory.
type fakeClient struct {
	mu sync.Mutex

	orders map[string]bootorder.Order

	fetchErr map[string]error
	writeErr map[string]error
	resetErr map[string]error
	// ignoreWrite accepts the write without changing the stored order.
	ignoreWrite map[string]bool
	// failRefetch fails every fetch after the first one.
	failRefetch map[string]bool

	fetches map[string]int
	writes  map[string]bootorder.Order
	resets  []string
}

func newFakeClient(orders map[string][]string) *fakeClient {
	f := &fakeClient{
		orders:      map[string]bootorder.Order{},
		fetchErr:    map[string]error{},
		writeErr:    map[string]error{},
		resetErr:    map[string]error{},
		ignoreWrite: map[string]bool{},
		failRefetch: map[string]bool{},
		fetches:     map[string]int{},
		writes:      map[string]bootorder.Order{},
	}
	for host, order := range orders {
		f.orders[host] = bootorder.OrderFromStrings(order)
	}
	return f
}

func (f *fakeClient) Fetch(_ context.Context, host string) (bootorder.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches[host]++
	if err := f.fetchErr[host]; err != nil {
		return nil, err
	}
	if f.failRefetch[host] && f.fetches[host] > 1 {
		return nil, errUnreachable
	}
	return f.orders[host].Clone(), nil
}

func (f *fakeClient) Write(_ context.Context, host string, order bootorder.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.writeErr[host]; err != nil {
		return err
	}
	f.writes[host] = order.Clone()
	if !f.ignoreWrite[host] {
		f.orders[host] = order.Clone()
	}
	return nil
}

func (f *fakeClient) Reset(_ context.Context, host string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resets = append(f.resets, host)
	return f.resetErr[host]
}
