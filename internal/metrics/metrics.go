package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companyplus_logins_total",
		Help: "Total number of successful logins.",
	})

	LoginFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companyplus_login_failures_total",
		Help: "Total number of rejected login attempts.",
	})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companyplus_orders_created_total",
		Help: "Total number of orders created through the API.",
	})

	OrdersUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companyplus_orders_updated_total",
		Help: "Total number of order status updates.",
	})

	OrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "companyplus_orders_deleted_total",
		Help: "Total number of orders deleted.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "companyplus_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
