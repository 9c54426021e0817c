package api

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/require"
)

func TestValidators(t *testing.T) {
	require.NoError(t, registerValidators())

	type params struct {
		Method string `binding:"required,payment_method" json:"paymentMethod"`
		Status string `binding:"required,order_status"   json:"status"`
	}

	cases := []struct {
		name    string
		params  params
		wantErr bool
	}{
		{name: "valid", params: params{Method: "JazzCash", Status: "Completed"}},
		{name: "unknown method", params: params{Method: "Barter", Status: "Completed"}, wantErr: true},
		{name: "lowercase method", params: params{Method: "cash", Status: "Completed"}, wantErr: true},
		{name: "unknown status", params: params{Method: "Cash", Status: "Shipped"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tc.params)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
