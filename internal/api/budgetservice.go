package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BudgetServiceName is the fully-qualified name of the BudgetService service.
const BudgetServiceName = "budgetbolt.v1.BudgetService"

// Procedure names, in the form "/<service>/<method>".
const (
	GetProfileProcedure                = "/budgetbolt.v1.BudgetService/GetProfile"
	SignOutProcedure                   = "/budgetbolt.v1.BudgetService/SignOut"
	ListTransactionsProcedure          = "/budgetbolt.v1.BudgetService/ListTransactions"
	CreateTransactionProcedure         = "/budgetbolt.v1.BudgetService/CreateTransaction"
	UpdateTransactionProcedure         = "/budgetbolt.v1.BudgetService/UpdateTransaction"
	DeleteTransactionProcedure         = "/budgetbolt.v1.BudgetService/DeleteTransaction"
	SearchTransactionsProcedure        = "/budgetbolt.v1.BudgetService/SearchTransactions"
	ExportTransactionsProcedure        = "/budgetbolt.v1.BudgetService/ExportTransactions"
	ListCategoriesProcedure            = "/budgetbolt.v1.BudgetService/ListCategories"
	CreateCategoryProcedure            = "/budgetbolt.v1.BudgetService/CreateCategory"
	UpdateCategoryProcedure            = "/budgetbolt.v1.BudgetService/UpdateCategory"
	DeleteCategoryProcedure            = "/budgetbolt.v1.BudgetService/DeleteCategory"
	ListGoalsProcedure                 = "/budgetbolt.v1.BudgetService/ListGoals"
	CreateGoalProcedure                = "/budgetbolt.v1.BudgetService/CreateGoal"
	UpdateGoalProcedure                = "/budgetbolt.v1.BudgetService/UpdateGoal"
	DeleteGoalProcedure                = "/budgetbolt.v1.BudgetService/DeleteGoal"
	ContributeToGoalProcedure          = "/budgetbolt.v1.BudgetService/ContributeToGoal"
	GetSettingsProcedure               = "/budgetbolt.v1.BudgetService/GetSettings"
	UpdateSettingsProcedure            = "/budgetbolt.v1.BudgetService/UpdateSettings"
	GetDashboardProcedure              = "/budgetbolt.v1.BudgetService/GetDashboard"
	WatchDashboardProcedure            = "/budgetbolt.v1.BudgetService/WatchDashboard"
	SuggestBudgetImprovementsProcedure = "/budgetbolt.v1.BudgetService/SuggestBudgetImprovements"
	SuggestMeaningfulGoalsProcedure    = "/budgetbolt.v1.BudgetService/SuggestMeaningfulGoals"
	SuggestBudgetGoalsProcedure        = "/budgetbolt.v1.BudgetService/SuggestBudgetGoals"
	ListNoticesProcedure               = "/budgetbolt.v1.BudgetService/ListNotices"
	RegisterPushTokenProcedure         = "/budgetbolt.v1.BudgetService/RegisterPushToken"
	UnregisterPushTokenProcedure       = "/budgetbolt.v1.BudgetService/UnregisterPushToken"
)

// BudgetServiceHandler is implemented by the server.
type BudgetServiceHandler interface {
	GetProfile(context.Context, *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error)
	SignOut(context.Context, *connect.Request[SignOutRequest]) (*connect.Response[SignOutResponse], error)

	ListTransactions(context.Context, *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error)
	CreateTransaction(context.Context, *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[UpdateTransactionRequest]) (*connect.Response[UpdateTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error)
	SearchTransactions(context.Context, *connect.Request[SearchTransactionsRequest]) (*connect.Response[SearchTransactionsResponse], error)
	ExportTransactions(context.Context, *connect.Request[ExportTransactionsRequest]) (*connect.Response[ExportTransactionsResponse], error)

	ListCategories(context.Context, *connect.Request[ListCategoriesRequest]) (*connect.Response[ListCategoriesResponse], error)
	CreateCategory(context.Context, *connect.Request[CreateCategoryRequest]) (*connect.Response[CreateCategoryResponse], error)
	UpdateCategory(context.Context, *connect.Request[UpdateCategoryRequest]) (*connect.Response[UpdateCategoryResponse], error)
	DeleteCategory(context.Context, *connect.Request[DeleteCategoryRequest]) (*connect.Response[DeleteCategoryResponse], error)

	ListGoals(context.Context, *connect.Request[ListGoalsRequest]) (*connect.Response[ListGoalsResponse], error)
	CreateGoal(context.Context, *connect.Request[CreateGoalRequest]) (*connect.Response[CreateGoalResponse], error)
	UpdateGoal(context.Context, *connect.Request[UpdateGoalRequest]) (*connect.Response[UpdateGoalResponse], error)
	DeleteGoal(context.Context, *connect.Request[DeleteGoalRequest]) (*connect.Response[DeleteGoalResponse], error)
	ContributeToGoal(context.Context, *connect.Request[ContributeToGoalRequest]) (*connect.Response[ContributeToGoalResponse], error)

	GetSettings(context.Context, *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error)
	UpdateSettings(context.Context, *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error)

	GetDashboard(context.Context, *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error)
	WatchDashboard(context.Context, *connect.Request[WatchDashboardRequest], *connect.ServerStream[WatchDashboardResponse]) error

	SuggestBudgetImprovements(context.Context, *connect.Request[SuggestBudgetImprovementsRequest]) (*connect.Response[SuggestBudgetImprovementsResponse], error)
	SuggestMeaningfulGoals(context.Context, *connect.Request[SuggestMeaningfulGoalsRequest]) (*connect.Response[SuggestGoalsResponse], error)
	SuggestBudgetGoals(context.Context, *connect.Request[SuggestBudgetGoalsRequest]) (*connect.Response[SuggestGoalsResponse], error)

	ListNotices(context.Context, *connect.Request[ListNoticesRequest]) (*connect.Response[ListNoticesResponse], error)
	RegisterPushToken(context.Context, *connect.Request[RegisterPushTokenRequest]) (*connect.Response[RegisterPushTokenResponse], error)
	UnregisterPushToken(context.Context, *connect.Request[UnregisterPushTokenRequest]) (*connect.Response[UnregisterPushTokenResponse], error)
}

func unary[Req, Res any](mux *http.ServeMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// NewBudgetServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The JSON codec is always installed.
func NewBudgetServiceHandler(svc BudgetServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	mux := http.NewServeMux()

	unary(mux, GetProfileProcedure, svc.GetProfile, opts)
	unary(mux, SignOutProcedure, svc.SignOut, opts)

	unary(mux, ListTransactionsProcedure, svc.ListTransactions, opts)
	unary(mux, CreateTransactionProcedure, svc.CreateTransaction, opts)
	unary(mux, UpdateTransactionProcedure, svc.UpdateTransaction, opts)
	unary(mux, DeleteTransactionProcedure, svc.DeleteTransaction, opts)
	unary(mux, SearchTransactionsProcedure, svc.SearchTransactions, opts)
	unary(mux, ExportTransactionsProcedure, svc.ExportTransactions, opts)

	unary(mux, ListCategoriesProcedure, svc.ListCategories, opts)
	unary(mux, CreateCategoryProcedure, svc.CreateCategory, opts)
	unary(mux, UpdateCategoryProcedure, svc.UpdateCategory, opts)
	unary(mux, DeleteCategoryProcedure, svc.DeleteCategory, opts)

	unary(mux, ListGoalsProcedure, svc.ListGoals, opts)
	unary(mux, CreateGoalProcedure, svc.CreateGoal, opts)
	unary(mux, UpdateGoalProcedure, svc.UpdateGoal, opts)
	unary(mux, DeleteGoalProcedure, svc.DeleteGoal, opts)
	unary(mux, ContributeToGoalProcedure, svc.ContributeToGoal, opts)

	unary(mux, GetSettingsProcedure, svc.GetSettings, opts)
	unary(mux, UpdateSettingsProcedure, svc.UpdateSettings, opts)

	unary(mux, GetDashboardProcedure, svc.GetDashboard, opts)
	mux.Handle(WatchDashboardProcedure, connect.NewServerStreamHandler(WatchDashboardProcedure, svc.WatchDashboard, opts...))

	unary(mux, SuggestBudgetImprovementsProcedure, svc.SuggestBudgetImprovements, opts)
	unary(mux, SuggestMeaningfulGoalsProcedure, svc.SuggestMeaningfulGoals, opts)
	unary(mux, SuggestBudgetGoalsProcedure, svc.SuggestBudgetGoals, opts)

	unary(mux, ListNoticesProcedure, svc.ListNotices, opts)
	unary(mux, RegisterPushTokenProcedure, svc.RegisterPushToken, opts)
	unary(mux, UnregisterPushTokenProcedure, svc.UnregisterPushToken, opts)

	return "/" + BudgetServiceName + "/", mux
}

// BudgetServiceClient is a typed client for BudgetService.
type BudgetServiceClient struct {
	getProfile                *connect.Client[GetProfileRequest, GetProfileResponse]
	signOut                   *connect.Client[SignOutRequest, SignOutResponse]
	listTransactions          *connect.Client[ListTransactionsRequest, ListTransactionsResponse]
	createTransaction         *connect.Client[CreateTransactionRequest, CreateTransactionResponse]
	updateTransaction         *connect.Client[UpdateTransactionRequest, UpdateTransactionResponse]
	deleteTransaction         *connect.Client[DeleteTransactionRequest, DeleteTransactionResponse]
	searchTransactions        *connect.Client[SearchTransactionsRequest, SearchTransactionsResponse]
	exportTransactions        *connect.Client[ExportTransactionsRequest, ExportTransactionsResponse]
	listCategories            *connect.Client[ListCategoriesRequest, ListCategoriesResponse]
	createCategory            *connect.Client[CreateCategoryRequest, CreateCategoryResponse]
	updateCategory            *connect.Client[UpdateCategoryRequest, UpdateCategoryResponse]
	deleteCategory            *connect.Client[DeleteCategoryRequest, DeleteCategoryResponse]
	listGoals                 *connect.Client[ListGoalsRequest, ListGoalsResponse]
	createGoal                *connect.Client[CreateGoalRequest, CreateGoalResponse]
	updateGoal                *connect.Client[UpdateGoalRequest, UpdateGoalResponse]
	deleteGoal                *connect.Client[DeleteGoalRequest, DeleteGoalResponse]
	contributeToGoal          *connect.Client[ContributeToGoalRequest, ContributeToGoalResponse]
	getSettings               *connect.Client[GetSettingsRequest, GetSettingsResponse]
	updateSettings            *connect.Client[UpdateSettingsRequest, UpdateSettingsResponse]
	getDashboard              *connect.Client[GetDashboardRequest, GetDashboardResponse]
	watchDashboard            *connect.Client[WatchDashboardRequest, WatchDashboardResponse]
	suggestBudgetImprovements *connect.Client[SuggestBudgetImprovementsRequest, SuggestBudgetImprovementsResponse]
	suggestMeaningfulGoals    *connect.Client[SuggestMeaningfulGoalsRequest, SuggestGoalsResponse]
	suggestBudgetGoals        *connect.Client[SuggestBudgetGoalsRequest, SuggestGoalsResponse]
	listNotices               *connect.Client[ListNoticesRequest, ListNoticesResponse]
	registerPushToken         *connect.Client[RegisterPushTokenRequest, RegisterPushTokenResponse]
	unregisterPushToken       *connect.Client[UnregisterPushTokenRequest, UnregisterPushTokenResponse]
}

// NewBudgetServiceClient constructs a client for the service at baseURL,
// for example "http://localhost:8111". The JSON codec is always installed.
func NewBudgetServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BudgetServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &BudgetServiceClient{
		getProfile:                connect.NewClient[GetProfileRequest, GetProfileResponse](httpClient, baseURL+GetProfileProcedure, opts...),
		signOut:                   connect.NewClient[SignOutRequest, SignOutResponse](httpClient, baseURL+SignOutProcedure, opts...),
		listTransactions:          connect.NewClient[ListTransactionsRequest, ListTransactionsResponse](httpClient, baseURL+ListTransactionsProcedure, opts...),
		createTransaction:         connect.NewClient[CreateTransactionRequest, CreateTransactionResponse](httpClient, baseURL+CreateTransactionProcedure, opts...),
		updateTransaction:         connect.NewClient[UpdateTransactionRequest, UpdateTransactionResponse](httpClient, baseURL+UpdateTransactionProcedure, opts...),
		deleteTransaction:         connect.NewClient[DeleteTransactionRequest, DeleteTransactionResponse](httpClient, baseURL+DeleteTransactionProcedure, opts...),
		searchTransactions:        connect.NewClient[SearchTransactionsRequest, SearchTransactionsResponse](httpClient, baseURL+SearchTransactionsProcedure, opts...),
		exportTransactions:        connect.NewClient[ExportTransactionsRequest, ExportTransactionsResponse](httpClient, baseURL+ExportTransactionsProcedure, opts...),
		listCategories:            connect.NewClient[ListCategoriesRequest, ListCategoriesResponse](httpClient, baseURL+ListCategoriesProcedure, opts...),
		createCategory:            connect.NewClient[CreateCategoryRequest, CreateCategoryResponse](httpClient, baseURL+CreateCategoryProcedure, opts...),
		updateCategory:            connect.NewClient[UpdateCategoryRequest, UpdateCategoryResponse](httpClient, baseURL+UpdateCategoryProcedure, opts...),
		deleteCategory:            connect.NewClient[DeleteCategoryRequest, DeleteCategoryResponse](httpClient, baseURL+DeleteCategoryProcedure, opts...),
		listGoals:                 connect.NewClient[ListGoalsRequest, ListGoalsResponse](httpClient, baseURL+ListGoalsProcedure, opts...),
		createGoal:                connect.NewClient[CreateGoalRequest, CreateGoalResponse](httpClient, baseURL+CreateGoalProcedure, opts...),
		updateGoal:                connect.NewClient[UpdateGoalRequest, UpdateGoalResponse](httpClient, baseURL+UpdateGoalProcedure, opts...),
		deleteGoal:                connect.NewClient[DeleteGoalRequest, DeleteGoalResponse](httpClient, baseURL+DeleteGoalProcedure, opts...),
		contributeToGoal:          connect.NewClient[ContributeToGoalRequest, ContributeToGoalResponse](httpClient, baseURL+ContributeToGoalProcedure, opts...),
		getSettings:               connect.NewClient[GetSettingsRequest, GetSettingsResponse](httpClient, baseURL+GetSettingsProcedure, opts...),
		updateSettings:            connect.NewClient[UpdateSettingsRequest, UpdateSettingsResponse](httpClient, baseURL+UpdateSettingsProcedure, opts...),
		getDashboard:              connect.NewClient[GetDashboardRequest, GetDashboardResponse](httpClient, baseURL+GetDashboardProcedure, opts...),
		watchDashboard:            connect.NewClient[WatchDashboardRequest, WatchDashboardResponse](httpClient, baseURL+WatchDashboardProcedure, opts...),
		suggestBudgetImprovements: connect.NewClient[SuggestBudgetImprovementsRequest, SuggestBudgetImprovementsResponse](httpClient, baseURL+SuggestBudgetImprovementsProcedure, opts...),
		suggestMeaningfulGoals:    connect.NewClient[SuggestMeaningfulGoalsRequest, SuggestGoalsResponse](httpClient, baseURL+SuggestMeaningfulGoalsProcedure, opts...),
		suggestBudgetGoals:        connect.NewClient[SuggestBudgetGoalsRequest, SuggestGoalsResponse](httpClient, baseURL+SuggestBudgetGoalsProcedure, opts...),
		listNotices:               connect.NewClient[ListNoticesRequest, ListNoticesResponse](httpClient, baseURL+ListNoticesProcedure, opts...),
		registerPushToken:         connect.NewClient[RegisterPushTokenRequest, RegisterPushTokenResponse](httpClient, baseURL+RegisterPushTokenProcedure, opts...),
		unregisterPushToken:       connect.NewClient[UnregisterPushTokenRequest, UnregisterPushTokenResponse](httpClient, baseURL+UnregisterPushTokenProcedure, opts...),
	}
}

func (c *BudgetServiceClient) GetProfile(ctx context.Context, req *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error) {
	return c.getProfile.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) SignOut(ctx context.Context, req *connect.Request[SignOutRequest]) (*connect.Response[SignOutResponse], error) {
	return c.signOut.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[CreateTransactionRequest]) (*connect.Response[CreateTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[UpdateTransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) SearchTransactions(ctx context.Context, req *connect.Request[SearchTransactionsRequest]) (*connect.Response[SearchTransactionsResponse], error) {
	return c.searchTransactions.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) ExportTransactions(ctx context.Context, req *connect.Request[ExportTransactionsRequest]) (*connect.Response[ExportTransactionsResponse], error) {
	return c.exportTransactions.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) ListCategories(ctx context.Context, req *connect.Request[ListCategoriesRequest]) (*connect.Response[ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) CreateCategory(ctx context.Context, req *connect.Request[CreateCategoryRequest]) (*connect.Response[CreateCategoryResponse], error) {
	return c.createCategory.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) UpdateCategory(ctx context.Context, req *connect.Request[UpdateCategoryRequest]) (*connect.Response[UpdateCategoryResponse], error) {
	return c.updateCategory.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) DeleteCategory(ctx context.Context, req *connect.Request[DeleteCategoryRequest]) (*connect.Response[DeleteCategoryResponse], error) {
	return c.deleteCategory.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) ListGoals(ctx context.Context, req *connect.Request[ListGoalsRequest]) (*connect.Response[ListGoalsResponse], error) {
	return c.listGoals.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) CreateGoal(ctx context.Context, req *connect.Request[CreateGoalRequest]) (*connect.Response[CreateGoalResponse], error) {
	return c.createGoal.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) UpdateGoal(ctx context.Context, req *connect.Request[UpdateGoalRequest]) (*connect.Response[UpdateGoalResponse], error) {
	return c.updateGoal.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) DeleteGoal(ctx context.Context, req *connect.Request[DeleteGoalRequest]) (*connect.Response[DeleteGoalResponse], error) {
	return c.deleteGoal.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) ContributeToGoal(ctx context.Context, req *connect.Request[ContributeToGoalRequest]) (*connect.Response[ContributeToGoalResponse], error) {
	return c.contributeToGoal.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) GetSettings(ctx context.Context, req *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error) {
	return c.getSettings.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error) {
	return c.updateSettings.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) WatchDashboard(ctx context.Context, req *connect.Request[WatchDashboardRequest]) (*connect.ServerStreamForClient[WatchDashboardResponse], error) {
	return c.watchDashboard.CallServerStream(ctx, req)
}

func (c *BudgetServiceClient) SuggestBudgetImprovements(ctx context.Context, req *connect.Request[SuggestBudgetImprovementsRequest]) (*connect.Response[SuggestBudgetImprovementsResponse], error) {
	return c.suggestBudgetImprovements.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) SuggestMeaningfulGoals(ctx context.Context, req *connect.Request[SuggestMeaningfulGoalsRequest]) (*connect.Response[SuggestGoalsResponse], error) {
	return c.suggestMeaningfulGoals.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) SuggestBudgetGoals(ctx context.Context, req *connect.Request[SuggestBudgetGoalsRequest]) (*connect.Response[SuggestGoalsResponse], error) {
	return c.suggestBudgetGoals.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) ListNotices(ctx context.Context, req *connect.Request[ListNoticesRequest]) (*connect.Response[ListNoticesResponse], error) {
	return c.listNotices.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) RegisterPushToken(ctx context.Context, req *connect.Request[RegisterPushTokenRequest]) (*connect.Response[RegisterPushTokenResponse], error) {
	return c.registerPushToken.CallUnary(ctx, req)
}

func (c *BudgetServiceClient) UnregisterPushToken(ctx context.Context, req *connect.Request[UnregisterPushTokenRequest]) (*connect.Response[UnregisterPushTokenResponse], error) {
	return c.unregisterPushToken.CallUnary(ctx, req)
}
