package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/executor"
	"github.com/arodin/nutrisync/internal/logger"
	"github.com/arodin/nutrisync/internal/models"
	"github.com/arodin/nutrisync/internal/utils"
)

// MealsService handles consumed products, the product catalog and lookups
// by barcode or name.
type MealsService struct {
	client   *api.Client
	executor *executor.Executor
}

// NewMealsService creates a new meals service
func NewMealsService(client *api.Client, exec *executor.Executor) *MealsService {
	return &MealsService{client: client, executor: exec}
}

// ProductsForRange fetches the products consumed in [from, to].
func (s *MealsService) ProductsForRange(ctx context.Context, from, to time.Time) executor.Outcome[models.MealStats] {
	endpoint := api.BuildURLWithParams("/user/products", map[string]string{
		"from": utils.FormatDateTime(from),
		"to":   utils.FormatDateTime(to),
	})

	return executor.ExecuteHeavy(ctx, s.executor,
		func(ctx context.Context) (*api.Response[models.JobTicket], error) {
			return api.Get[models.JobTicket](ctx, s.client, endpoint)
		},
		func(ctx context.Context, requestID string) (*api.Response[models.MealStats], error) {
			return api.Get[models.MealStats](ctx, s.client, "/heavy_response/"+requestID)
		},
	)
}

// ProductByBarcode looks up a single product. A backend "not_found" status
// is a hard error here: a barcode names one specific known item.
func (s *MealsService) ProductByBarcode(ctx context.Context, barcode string) executor.Outcome[models.Product] {
	result := executor.ExecuteHeavy(ctx, s.executor,
		func(ctx context.Context) (*api.Response[models.JobTicket], error) {
			return api.Get[models.JobTicket](ctx, s.client, "/products/bcode/"+url.PathEscape(barcode))
		},
		func(ctx context.Context, requestID string) (*api.Response[models.BarcodeLookup], error) {
			return api.Get[models.BarcodeLookup](ctx, s.client, "/heavy_response/"+requestID)
		},
	)
	if !result.IsSuccess() {
		return executor.FailWith[models.Product](result.Err())
	}

	lookup := result.Data()
	switch lookup.Status {
	case models.LookupStatusSuccess:
		if lookup.Data == nil {
			return executor.Fail[models.Product](executor.KindExecution, "lookup succeeded without product data")
		}
		code, _ := strconv.ParseInt(barcode, 10, 64)
		return executor.Resolve(models.Product{
			ID:       lookup.Data.ProductID,
			Name:     lookup.Data.Name,
			Barcode:  code,
			Calories: int(lookup.Data.Calories),
			Proteins: lookup.Data.Proteins,
			Fats:     lookup.Data.Fats,
			Carbs:    lookup.Data.Carbs,
			Mass:     int(lookup.Data.Mass),
		})
	case models.LookupStatusNotFound:
		message := lookup.ErrorMessage
		if message == "" {
			message = "product not found"
		}
		return executor.Fail[models.Product](executor.KindExecution, "%s", message)
	default:
		return executor.Fail[models.Product](executor.KindExecution, "unknown lookup status: %s", lookup.Status)
	}
}

// SearchByName finds catalog products by name. Unlike the barcode lookup,
// a "not_found" status is an empty success: a query may legitimately match
// nothing.
func (s *MealsService) SearchByName(ctx context.Context, name string) executor.Outcome[[]models.Product] {
	result := executor.ExecuteHeavy(ctx, s.executor,
		func(ctx context.Context) (*api.Response[models.JobTicket], error) {
			return api.Get[models.JobTicket](ctx, s.client, "/products/name/"+url.PathEscape(name))
		},
		func(ctx context.Context, requestID string) (*api.Response[models.NameSearch], error) {
			return api.Get[models.NameSearch](ctx, s.client, "/heavy_response/"+requestID)
		},
	)
	if !result.IsSuccess() {
		return executor.FailWith[[]models.Product](result.Err())
	}

	search := result.Data()
	if search.Status == models.LookupStatusNotFound {
		logger.Info("No products found for name %q", name)
		return executor.Resolve([]models.Product{})
	}

	if search.Data == nil || search.Data.Products == nil {
		logger.Warn("Name search for %q returned no product list and no not_found status", name)
		return executor.Resolve([]models.Product{})
	}

	products := make([]models.Product, 0, len(search.Data.Products))
	for _, dto := range search.Data.Products {
		products = append(products, models.Product{
			ID:       dto.ProductID,
			Name:     dto.Name,
			Calories: int(dto.Calories),
			Proteins: dto.Proteins,
			Fats:     dto.Fats,
			Carbs:    dto.Carbs,
			Mass:     int(dto.Mass),
		})
	}
	return executor.Resolve(products)
}

// AddProduct registers a new product in the catalog.
func (s *MealsService) AddProduct(ctx context.Context, product models.Product) executor.Outcome[models.MessageResponse] {
	request := models.AddProductRequest{
		Barcode:  product.Barcode,
		Name:     product.Name,
		Calories: product.Calories,
		Proteins: product.Proteins,
		Fats:     product.Fats,
		Carbs:    product.Carbs,
		Mass:     product.Mass,
	}
	return executor.Execute(ctx, s.executor, func(ctx context.Context) (*api.Response[models.MessageResponse], error) {
		return api.Post[models.MessageResponse](ctx, s.client, "/products", request)
	})
}

// ConsumeProduct records a consumed mass of a known product.
func (s *MealsService) ConsumeProduct(ctx context.Context, request models.ConsumeRequest) executor.Outcome[models.MessageResponse] {
	return executor.Execute(ctx, s.executor, func(ctx context.Context) (*api.Response[models.MessageResponse], error) {
		return api.Post[models.MessageResponse](ctx, s.client, "/user/product", request)
	})
}

// GroupByMealTime buckets a day's meal items by time of day: breakfast
// before 11:00, lunch 11:00-15:59, snacks 16:00-17:59, dinner from 18:00.
func GroupByMealTime(items []models.MealItem) (models.GroupedMeals, error) {
	var grouped models.GroupedMeals
	for _, item := range items {
		ts, err := utils.ParseDateTime(item.Time)
		if err != nil {
			return models.GroupedMeals{}, err
		}
		switch hour := ts.Hour(); {
		case hour < 11:
			grouped.Breakfast = append(grouped.Breakfast, item)
		case hour < 16:
			grouped.Lunch = append(grouped.Lunch, item)
		case hour < 18:
			grouped.Snacks = append(grouped.Snacks, item)
		default:
			grouped.Dinner = append(grouped.Dinner, item)
		}
	}
	return grouped, nil
}
