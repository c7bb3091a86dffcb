package sqlquery

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/household/internal/domain/ast"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"github.com/architeacher/household/pkg/logger"
	"github.com/rs/zerolog"
)

const (
	DefaultPrimaryKey = "id"

	countColumn = "total"
	component   = "query_builder"
)

type state int

const (
	stateUnbound state = iota
	stateReady
	stateSelecting
	stateFiltering
	stateSorting
	stateLimiting
	stateOffsetting
	stateInserting
	stateUpdating
	stateDeleting
	stateCounting
	statePaginating
)

// aggregatable are the states Count and Paginate may end a chain from.
// Paginate replaces any sort and window already set.
var aggregatable = []state{stateReady, stateSelecting, stateFiltering, stateSorting, stateLimiting, stateOffsetting}

var stateNames = map[state]string{
	stateUnbound:    "unbound",
	stateReady:      "ready",
	stateSelecting:  "selecting",
	stateFiltering:  "filtering",
	stateSorting:    "sorting",
	stateLimiting:   "limiting",
	stateOffsetting: "offsetting",
	stateInserting:  "inserting",
	stateUpdating:   "updating",
	stateDeleting:   "deleting",
	stateCounting:   "counting",
	statePaginating: "paginating",
}

func (s state) String() string {
	return stateNames[s]
}

func (s state) selecting() bool {
	return s >= stateSelecting && s <= stateOffsetting || s == statePaginating
}

// Flags is a read-only view of what the chain in progress has configured.
type Flags struct {
	HasSelect     bool
	HasWhere      bool
	HasInclude    bool
	HasSort       bool
	HasTake       bool
	HasSkip       bool
	HasCount      bool
	HasPagination bool
}

func (f Flags) Any() bool {
	return f != Flags{}
}

type (
	whereClause struct {
		predicate Predicate
		table     string
	}

	joinClause struct {
		kind   model.JoinKind
		clause string
	}

	Option func(*Builder)

	// Builder assembles and runs one statement at a time against a bound
	// table. It is not safe for concurrent use; every terminal verb resets
	// it to the initial stage of the same table.
	Builder struct {
		dialect    Dialect
		executor   ports.Executor
		logger     logger.Logger
		primaryKey string

		table      string
		state      state
		generation uint64
		err        error

		columns  []string
		joins    []joinClause
		wheres   []whereClause
		orderBys []string
		limit    *uint64
		offset   *uint64
		record   model.Record
	}
)

func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		b.logger = log.Component(component)
	}
}

func WithPrimaryKey(column string) Option {
	return func(b *Builder) {
		if column != "" {
			b.primaryKey = column
		}
	}
}

func NewBuilder(dialect Dialect, executor ports.Executor, opts ...Option) *Builder {
	b := &Builder{
		dialect:    dialect,
		executor:   executor,
		logger:     logger.Logger{Logger: zerolog.Nop()},
		primaryKey: DefaultPrimaryKey,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// SetTable binds the builder to table and returns the initial stage.
func (b *Builder) SetTable(table string) ports.InitialStage {
	b.logVerb("SetTable")
	b.clear()

	b.table = table
	b.state = stateReady

	if !isSimpleIdentifier(table) {
		b.fail("SetTable", model.NewError(context.Background(), model.ErrInvalidParameter, "SetTable",
			fmt.Sprintf("invalid table name %q", table), model.WithField("table")))
	}

	return initialStage{b.handle()}
}

// ClearQuery drops the chain in progress and invalidates its stage handles.
func (b *Builder) ClearQuery() {
	b.logVerb("ClearQuery")
	b.reset()
}

func (b *Builder) Table() string {
	return b.table
}

func (b *Builder) Dialect() Dialect {
	return b.dialect
}

func (b *Builder) Flags() Flags {
	return Flags{
		HasSelect:     b.state.selecting() && len(b.columns) > 0,
		HasWhere:      len(b.wheres) > 0,
		HasInclude:    len(b.joins) > 0,
		HasSort:       len(b.orderBys) > 0,
		HasTake:       b.limit != nil,
		HasSkip:       b.offset != nil,
		HasCount:      b.state == stateCounting,
		HasPagination: b.state == statePaginating,
	}
}

func (b *Builder) handle() handle {
	return handle{b: b, gen: b.generation}
}

func (b *Builder) clear() {
	b.err = nil
	b.columns = nil
	b.joins = nil
	b.wheres = nil
	b.orderBys = nil
	b.limit = nil
	b.offset = nil
	b.record = nil
	b.generation++
}

func (b *Builder) reset() {
	b.clear()

	if b.table == "" {
		b.state = stateUnbound

		return
	}

	b.state = stateReady

	if !isSimpleIdentifier(b.table) {
		b.err = model.NewError(context.Background(), model.ErrInvalidParameter, "SetTable",
			fmt.Sprintf("invalid table name %q", b.table), model.WithField("table"))
	}
}

// enter logs method and reports whether it may run in the current state.
// A refused verb records the first error of the chain.
func (b *Builder) enter(method string, allowed ...state) bool {
	b.logVerb(method)

	if b.err != nil {
		return false
	}

	if !slices.Contains(allowed, b.state) {
		b.fail(method, model.NewError(context.Background(), model.ErrInvalidStage, method,
			fmt.Sprintf("not allowed while %s", b.state)))

		return false
	}

	return true
}

func (b *Builder) fail(method string, err error) {
	if b.err != nil {
		return
	}

	b.err = err

	b.logger.Error().
		Err(err).
		Str("method", method).
		Str("table", b.table).
		Msg("query builder rejected verb")
}

func (b *Builder) report(ctx context.Context, method string, kind error, err error) error {
	wrapped := model.Wrap(ctx, kind, method, err)

	b.logger.WithContext(ctx).Error().
		Err(wrapped).
		Str("method", method).
		Str("table", b.table).
		Msg("query failed")

	return wrapped
}

func (b *Builder) logVerb(method string) {
	b.logger.Debug().
		Str("method", method).
		Str("table", b.table).
		Str("state", b.state.String()).
		Msg("query builder verb")
}

func (b *Builder) selectFields(method string, fields []string) {
	if !b.enter(method, stateReady) {
		return
	}

	if len(fields) == 0 {
		fields = []string{"*"}
	}

	columns := make([]string, 0, len(fields))

	for _, field := range fields {
		column, err := qualify(b.table, field)
		if err != nil {
			b.fail(method, err)

			return
		}

		columns = append(columns, column)
	}

	b.columns = columns
	b.state = stateSelecting
}

func (b *Builder) where(expr model.Expression) {
	const method = "Where"

	if !b.enter(method, stateReady, stateSelecting, stateFiltering, stateUpdating, stateDeleting) {
		return
	}

	predicate, err := compileExpression(method, expr)
	if err != nil {
		b.fail(method, err)

		return
	}

	b.wheres = append(b.wheres, whereClause{predicate: predicate, table: b.table})

	switch b.state {
	case stateReady:
		b.columns = []string{b.table + ".*"}
		b.state = stateFiltering
	case stateSelecting:
		b.state = stateFiltering
	}
}

func (b *Builder) include(table string, params model.IncludeParams) {
	const method = "Include"

	if !b.enter(method, stateSelecting, stateFiltering) {
		return
	}

	if !isSimpleIdentifier(table) {
		b.fail(method, model.NewError(context.Background(), model.ErrInvalidParameter, method,
			fmt.Sprintf("invalid table name %q", table), model.WithField("table")))

		return
	}

	if params.On == nil {
		b.fail(method, model.NewError(context.Background(), model.ErrNullParameter, method,
			"join condition is required", model.WithField("on")))

		return
	}

	kind := params.Kind.OrDefault()
	if !kind.Valid() {
		b.fail(method, model.NewError(context.Background(), model.ErrInvalidParameter, method,
			fmt.Sprintf("unknown join kind %q", params.Kind), model.WithField("kind")))

		return
	}

	clause, err := b.joinCondition(table, params.On)
	if err != nil {
		b.fail(method, err)

		return
	}

	b.joins = append(b.joins, joinClause{kind: kind, clause: clause})

	if params.Filter == nil {
		return
	}

	predicate, err := compileExpression(method, params.Filter)
	if err != nil {
		b.fail(method, err)

		return
	}

	b.wheres = append(b.wheres, whereClause{predicate: predicate, table: table})
	b.state = stateFiltering
}

func (b *Builder) joinCondition(table string, on *model.JoinCondition) (string, error) {
	op := on.Operator
	if op == "" {
		op = model.OpEq
	}

	if !op.IsComparison() {
		return "", model.NewError(context.Background(), model.ErrInvalidParameter, "Include",
			fmt.Sprintf("join operator %q is not a comparison", op), model.WithField("on.operator"))
	}

	left, err := qualify(b.table, on.Left)
	if err != nil {
		return "", err
	}

	right, err := qualify(table, on.Right)
	if err != nil {
		return "", err
	}

	sqlOp := string(op)
	if op == model.OpNotEq {
		sqlOp = "<>"
	}

	return fmt.Sprintf("%s ON %s %s %s", table, left, sqlOp, right), nil
}

func (b *Builder) sortBy(field string, direction model.SortDirection) {
	const method = "SortBy"

	if !b.enter(method, stateSelecting, stateFiltering, stateSorting) {
		return
	}

	direction = direction.OrDefault()
	if !direction.Valid() {
		b.fail(method, model.NewError(context.Background(), model.ErrInvalidParameter, method,
			fmt.Sprintf("unknown sort direction %q", direction), model.WithField("direction")))

		return
	}

	column, err := qualify(b.table, field)
	if err != nil {
		b.fail(method, err)

		return
	}

	b.orderBys = append(b.orderBys, column+" "+string(direction))
	b.state = stateSorting
}

func (b *Builder) take(limit uint64) {
	const method = "Take"

	if !b.enter(method, stateSelecting, stateFiltering, stateSorting) {
		return
	}

	if limit == 0 {
		b.fail(method, model.NewError(context.Background(), model.ErrInvalidParameter, method,
			"limit must be positive", model.WithField("limit")))

		return
	}

	b.ensureOrder()
	b.limit = &limit
	b.state = stateLimiting
}

func (b *Builder) skip(offset uint64) {
	const method = "Skip"

	if !b.enter(method, stateSelecting, stateFiltering, stateSorting, stateLimiting) {
		return
	}

	b.ensureOrder()
	b.offset = &offset
	b.state = stateOffsetting
}

// ensureOrder sorts by primary key when the chain has no explicit order, so
// windows over the result are deterministic.
func (b *Builder) ensureOrder() {
	if len(b.orderBys) == 0 {
		b.orderBys = []string{b.table + "." + b.primaryKey + " " + string(model.SortAsc)}
	}
}

func (b *Builder) insert(record model.Record) {
	b.write("Insert", stateInserting, record)
}

func (b *Builder) update(changes model.Record) {
	b.write("Update", stateUpdating, changes)
}

func (b *Builder) write(method string, next state, record model.Record) {
	if !b.enter(method, stateReady) {
		return
	}

	if len(record) == 0 {
		b.fail(method, model.NewError(context.Background(), model.ErrNullParameter, method,
			"at least one column is required", model.WithField("record")))

		return
	}

	for column := range record {
		if !isSimpleIdentifier(column) {
			b.fail(method, model.NewError(context.Background(), model.ErrInvalidParameter, method,
				fmt.Sprintf("invalid column name %q", column), model.WithField(column)))

			return
		}
	}

	b.record = maps.Clone(record)
	b.state = next
}

func (b *Builder) delete() {
	if !b.enter("Delete", stateReady) {
		return
	}

	b.state = stateDeleting
}

func (b *Builder) execute(ctx context.Context, method string) ([]model.Row, error) {
	defer b.reset()

	rows := make([]model.Row, 0)

	if err := b.run(ctx, method, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func (b *Builder) executeAndTakeFirst(ctx context.Context) (model.Row, error) {
	const method = "ExecuteAndTakeFirst"

	rows, err := b.execute(ctx, method)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, b.report(ctx, method, model.ErrQueryExecution, model.Wrap(ctx, model.ErrQueryExecution, method,
			model.ErrNoRows, model.WithMessageKey(model.MessageKey(model.ErrNoRows))))
	}

	return rows[0], nil
}

func (b *Builder) executeInto(ctx context.Context, dst any) error {
	defer b.reset()

	return b.run(ctx, "ExecuteInto", dst)
}

func (b *Builder) run(ctx context.Context, method string, dst any) error {
	b.logVerb(method)

	if b.err != nil {
		return b.report(ctx, method, model.ErrQueryBuild, b.err)
	}

	stmt, kind, err := b.statement(method)
	if err != nil {
		return b.report(ctx, method, model.ErrQueryBuild, err)
	}

	return b.query(ctx, stmt, kind, dst)
}

func (b *Builder) query(ctx context.Context, stmt ports.Statement, kind error, dst any) error {
	b.logger.WithContext(ctx).Debug().
		Str("method", stmt.Method).
		Str("table", stmt.Table).
		Str("sql", stmt.SQL).
		Int("args", len(stmt.Args)).
		Msg("executing statement")

	if err := b.executor.Query(ctx, stmt, dst); err != nil {
		return b.report(ctx, stmt.Method, kind, err)
	}

	return nil
}

func (b *Builder) count(ctx context.Context) (int64, error) {
	const method = "Count"

	defer b.reset()

	if !b.enter(method, aggregatable...) {
		return 0, b.report(ctx, method, model.ErrQueryBuild, b.err)
	}

	b.state = stateCounting

	return b.countRows(ctx, method)
}

// countRows counts the rows matched by the current table, joins and
// filters. Sorting and the window are ignored and left untouched.
func (b *Builder) countRows(ctx context.Context, method string) (int64, error) {
	sb := b.dialect.statements().Select("COUNT(*) AS " + countColumn).From(b.table)

	sb, err := b.applyFilters(sb)
	if err != nil {
		return 0, b.report(ctx, method, model.ErrQueryBuild, err)
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return 0, b.report(ctx, method, model.ErrQueryBuild, err)
	}

	var rows []model.Row

	stmt := ports.Statement{Method: method, Table: b.table, SQL: query, Args: args}
	if err := b.query(ctx, stmt, model.ErrQueryExecution, &rows); err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		return 0, nil
	}

	total, err := toInt64(rows[0][countColumn])
	if err != nil {
		return 0, b.report(ctx, method, model.ErrQueryExecution, err)
	}

	return total, nil
}

func (b *Builder) paginate(ctx context.Context, sortField string, args model.PageArgs) (*model.Page, error) {
	const method = "Paginate"

	defer b.reset()

	if !b.enter(method, aggregatable...) {
		return nil, b.report(ctx, method, model.ErrQueryBuild, b.err)
	}

	if err := args.Validate(); err != nil {
		return nil, b.report(ctx, method, model.ErrInvalidParameter, err)
	}

	if sortField == "" {
		sortField = b.primaryKey
	}

	column, err := qualify(b.table, sortField)
	if err != nil {
		return nil, b.report(ctx, method, model.ErrInvalidParameter, err)
	}

	b.state = statePaginating

	total, err := b.countRows(ctx, method)
	if err != nil {
		return nil, err
	}

	if len(b.columns) == 0 {
		b.columns = []string{b.table + ".*"}
	}

	limit := uint64(args.PageSize)
	offset := args.Offset()

	b.orderBys = []string{column + " " + string(args.Direction.OrDefault())}
	b.limit = &limit
	b.offset = &offset

	stmt, kind, err := b.statement(method)
	if err != nil {
		return nil, b.report(ctx, method, model.ErrQueryBuild, err)
	}

	rows := make([]model.Row, 0, min(limit, uint64(max(total, 0))))
	if err := b.query(ctx, stmt, kind, &rows); err != nil {
		return nil, err
	}

	return &model.Page{
		Result: rows,
		Options: model.PageOptions{
			PageSize:    args.PageSize,
			CurrentPage: args.CurrentPage,
			TotalPages:  model.TotalPages(total, args.PageSize),
			TotalItems:  total,
		},
	}, nil
}

// statement renders the chain in progress. The returned kind is the error
// kind used when running it fails.
func (b *Builder) statement(method string) (ports.Statement, error, error) {
	var (
		query string
		args  []any
		kind  = model.ErrDatabaseOperation
		err   error
	)

	switch {
	case b.state.selecting():
		kind = model.ErrQueryExecution
		query, args, err = b.selectSQL()
	case b.state == stateInserting:
		query, args, err = b.insertSQL()
	case b.state == stateUpdating:
		query, args, err = b.updateSQL()
	case b.state == stateDeleting:
		query, args, err = b.deleteSQL()
	default:
		return ports.Statement{}, nil, model.NewError(context.Background(), model.ErrInvalidStage, method,
			fmt.Sprintf("nothing to execute while %s", b.state))
	}

	if err != nil {
		return ports.Statement{}, nil, err
	}

	return ports.Statement{Method: method, Table: b.table, SQL: query, Args: args}, kind, nil
}

func (b *Builder) selectSQL() (string, []any, error) {
	sb := b.dialect.statements().Select(b.columns...).From(b.table)

	sb, err := b.applyFilters(sb)
	if err != nil {
		return "", nil, err
	}

	if len(b.orderBys) > 0 {
		sb = sb.OrderBy(b.orderBys...)
	}

	return b.dialect.applyWindow(sb, b.limit, b.offset).ToSql()
}

func (b *Builder) applyFilters(sb sq.SelectBuilder) (sq.SelectBuilder, error) {
	for _, join := range b.joins {
		switch join.kind {
		case model.JoinLeft:
			sb = sb.LeftJoin(join.clause)
		case model.JoinRight:
			sb = sb.RightJoin(join.clause)
		default:
			sb = sb.Join(join.clause)
		}
	}

	filters, err := b.filters()
	if err != nil {
		return sb, err
	}

	for _, filter := range filters {
		sb = sb.Where(filter)
	}

	return sb, nil
}

func (b *Builder) filters() ([]sq.Sqlizer, error) {
	filters := make([]sq.Sqlizer, 0, len(b.wheres))

	for _, clause := range b.wheres {
		expr, err := clause.predicate(NewExpressionBuilder(b.dialect, clause.table))
		if err != nil {
			return nil, err
		}

		filters = append(filters, expr)
	}

	return filters, nil
}

func (b *Builder) insertSQL() (string, []any, error) {
	query, args, err := b.dialect.statements().
		Insert(b.table).
		Columns(b.record.Columns()...).
		Values(b.record.Values()...).
		ToSql()
	if err != nil {
		return "", nil, err
	}

	return b.dialect.returningSQL(query, "INSERTED", " VALUES "), args, nil
}

func (b *Builder) updateSQL() (string, []any, error) {
	ub := b.dialect.statements().Update(b.table)

	for _, column := range b.record.Columns() {
		ub = ub.Set(column, b.record[column])
	}

	filters, err := b.filters()
	if err != nil {
		return "", nil, err
	}

	for _, filter := range filters {
		ub = ub.Where(filter)
	}

	if len(filters) == 0 {
		b.logger.Warn().Str("table", b.table).Msg("update without filter affects every row")
	}

	query, args, err := ub.ToSql()
	if err != nil {
		return "", nil, err
	}

	return b.dialect.returningSQL(query, "INSERTED", " WHERE "), args, nil
}

func (b *Builder) deleteSQL() (string, []any, error) {
	db := b.dialect.statements().Delete(b.table)

	filters, err := b.filters()
	if err != nil {
		return "", nil, err
	}

	for _, filter := range filters {
		db = db.Where(filter)
	}

	if len(filters) == 0 {
		b.logger.Warn().Str("table", b.table).Msg("delete without filter affects every row")
	}

	query, args, err := db.ToSql()
	if err != nil {
		return "", nil, err
	}

	return b.dialect.returningSQL(query, "DELETED", " WHERE "), args, nil
}

func compileExpression(method string, expr model.Expression) (Predicate, error) {
	if expr == nil {
		return nil, model.NewError(context.Background(), model.ErrNullParameter, method,
			"filter expression is required", model.WithField("expression"))
	}

	node, err := ast.Parse(expr)
	if err != nil {
		return nil, err
	}

	compiler := NewCompiler()
	compiler.SetExpression(node)

	return compiler.Compile()
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected count value of type %T", value)
	}
}
