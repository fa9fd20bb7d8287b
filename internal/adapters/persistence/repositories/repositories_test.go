package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"libris/internal/core/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return db, mock
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func TestCirculationRepository_Checkout(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCirculationRepository(db, NewProcedures(nil, nil))

	due := time.Date(2026, 10, 31, 23, 59, 0, 0, time.Local)
	mock.ExpectExec(q("CALL sp_checkout_item(?, ?, ?, @o_loan_id, @o_due_date)")).
		WithArgs(int64(1001), int64(500), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT CAST(@o_loan_id AS SIGNED) AS loan_id, CAST(@o_due_date AS DATETIME) AS due_date")).
		WillReturnRows(sqlmock.NewRows([]string{"loan_id", "due_date"}).AddRow(int64(77), due))

	out, err := repo.Checkout(context.Background(), 1001, 500, 1)
	require.NoError(t, err)
	require.NotNil(t, out.LoanID)
	require.NotNil(t, out.DueDate)
	assert.Equal(t, int64(77), *out.LoanID)
	assert.True(t, due.Equal(*out.DueDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCirculationRepository_Checkin_NullFine(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCirculationRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_checkin_item(?, ?, @o_fine_assessed)")).
		WithArgs(int64(77), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT CAST(@o_fine_assessed AS DECIMAL(12,2)) AS fine_assessed")).
		WillReturnRows(sqlmock.NewRows([]string{"fine_assessed"}).AddRow(nil))

	out, err := repo.Checkin(context.Background(), 77, 1)
	require.NoError(t, err)
	assert.Nil(t, out.FineAssessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCirculationRepository_Renew_DomainError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCirculationRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_renew_loan(?, @o_new_due_date, @o_renewal_count)")).
		WithArgs(int64(77)).
		WillReturnError(&mysql.MySQLError{Number: 20203, Message: "Maximum renewals reached"})

	out, err := repo.Renew(context.Background(), 77)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrMaxRenewalsReached)
	assert.NotErrorIs(t, err, domain.ErrLoanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCirculationRepository_GetLoan_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCirculationRepository(db, NewProcedures(nil, nil))

	mock.ExpectQuery("SELECT \\* FROM `loans` WHERE loan_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"loan_id"}))

	loan, err := repo.GetLoan(context.Background(), 9)
	assert.Nil(t, loan)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReservationRepository_Cancel_NoOuts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_cancel_reservation(?, ?)")).
		WithArgs(int64(12), int64(1001)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), 12, 1001))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Place(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_place_reservation(?, ?, @o_reservation_id, @o_queue_position)")).
		WithArgs(int64(40), int64(1001)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT CAST(@o_reservation_id AS SIGNED) AS reservation_id, CAST(@o_queue_position AS SIGNED) AS queue_position")).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_id", "queue_position"}).AddRow(int64(12), int64(3)))

	out, err := repo.Place(context.Background(), 40, 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(12), *out.ReservationID)
	assert.Equal(t, 3, *out.QueuePosition)
}

func TestFineRepository_Pay_PrivilegeDenied(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFineRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_pay_fine(?, ?, ?, ?, @o_remaining_balance, @o_new_status)")).
		WithArgs(int64(5), 2.5, "Cash", int64(1)).
		WillReturnError(&mysql.MySQLError{Number: 1370, Message: "execute command denied"})

	_, err := repo.Pay(context.Background(), 5, 2.5, "Cash", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientPrivilege)
}

func TestFineRepository_Assess_NilLoan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFineRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_assess_fine(?, ?, ?, ?, ?, @o_fine_id)")).
		WithArgs(int64(1001), nil, "Damaged Item", 12.0, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT CAST(@o_fine_id AS SIGNED) AS fine_id")).
		WillReturnRows(sqlmock.NewRows([]string{"fine_id"}).AddRow(int64(8)))

	out, err := repo.Assess(context.Background(), AssessFineParams{
		PatronID: 1001,
		FineType: "Damaged Item",
		Amount:   12,
		StaffID:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), *out.FineID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepository_Run(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBatchRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_expire_memberships(@o_processed_count)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT CAST(@o_processed_count AS SIGNED) AS processed_count")).
		WillReturnRows(sqlmock.NewRows([]string{"processed_count"}).AddRow(int64(4)))

	out, err := repo.Run(context.Background(), JobExpireMemberships)
	require.NoError(t, err)
	assert.Equal(t, int64(4), *out.ProcessedCount)
}

func TestBatchJob(t *testing.T) {
	assert.Equal(t, "sp_cleanup_expired_reservations", JobCleanupReservations.Procedure())
	assert.True(t, JobOverdueNotifications.Valid())
	assert.False(t, BatchJob("drop_everything").Valid())
}

func TestRoleRepository_ActiveRoleCodes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoleRepository(db)

	mock.ExpectQuery("SELECT .*role_code.* FROM user_roles AS ur INNER JOIN roles r").
		WillReturnRows(sqlmock.NewRows([]string{"role_code"}).
			AddRow("ROLE_PATRON").
			AddRow("ROLE_CIRCULATION_CLERK"))

	codes, err := repo.ActiveRoleCodes(context.Background(), 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ROLE_PATRON", "ROLE_CIRCULATION_CLERK"}, codes)
}

func TestFineRepository_Pay_SelfServiceNullStaff(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFineRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_pay_fine(?, ?, ?, ?, @o_remaining_balance, @o_new_status)")).
		WithArgs(int64(5), 2.5, "Online", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT CAST(@o_remaining_balance AS DECIMAL(12,2)) AS remaining_balance, @o_new_status AS new_status")).
		WillReturnRows(sqlmock.NewRows([]string{"remaining_balance", "new_status"}).AddRow(0.0, "Paid"))

	out, err := repo.Pay(context.Background(), 5, 2.5, "Online", 0)
	require.NoError(t, err)
	assert.Equal(t, "Paid", *out.NewStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepository_StaffIDForUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStaffRepository(db)

	mock.ExpectQuery("SELECT .*staff_id.* FROM `staff` WHERE user_id = \\? AND is_active = \\?").
		WithArgs(int64(7), "Y", 1).
		WillReturnRows(sqlmock.NewRows([]string{"staff_id"}).AddRow(int64(3)))
	mock.ExpectQuery("SELECT .*staff_id.* FROM `staff`").
		WithArgs(int64(42), "Y", 1).
		WillReturnRows(sqlmock.NewRows([]string{"staff_id"}))

	id, err := repo.StaffIDForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	id, err = repo.StaffIDForUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatronRepository_Add(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatronRepository(db, NewProcedures(nil, nil))

	dob := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2027, 10, 17, 0, 0, 0, 0, time.Local)
	mock.ExpectExec(q("CALL sp_add_patron(?, ?, ?, ?, ?, ?, ?, ?, ?, @o_patron_id, @o_membership_expiry)")).
		WithArgs("C-0009", "Ada", "Byron", "ada@example.org", "555-0101", "1 Main St", dob, "Student", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT CAST(@o_patron_id AS SIGNED) AS patron_id, CAST(@o_membership_expiry AS DATETIME) AS membership_expiry")).
		WillReturnRows(sqlmock.NewRows([]string{"patron_id", "membership_expiry"}).AddRow(int64(1009), expiry))

	out, err := repo.Add(context.Background(), AddPatronParams{
		CardNumber:     "C-0009",
		FirstName:      "Ada",
		LastName:       "Byron",
		Email:          "ada@example.org",
		Phone:          "555-0101",
		Address:        "1 Main St",
		DateOfBirth:    dob,
		MembershipType: "Student",
		BranchID:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1009), *out.PatronID)
	assert.True(t, expiry.Equal(*out.MembershipExpiry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatronRepository_Update_KeepsNilFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatronRepository(db, NewProcedures(nil, nil))

	email := "new@example.org"
	mock.ExpectExec(q("CALL sp_update_patron(?, ?, ?, ?)")).
		WithArgs(int64(1001), email, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), UpdatePatronParams{PatronID: 1001, Email: &email}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepository_DailyReport(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBatchRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_generate_daily_report(?, @o_checkouts, @o_returns, @o_new_patrons, @o_overdue, @o_total_fines)")).
		WithArgs(nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT CAST(@o_checkouts AS SIGNED) AS checkouts")).
		WillReturnRows(sqlmock.NewRows([]string{"checkouts", "returns", "new_patrons", "overdue", "total_fines"}).
			AddRow(int64(14), int64(9), int64(2), int64(5), 37.5))

	out, err := repo.DailyReport(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(14), *out.Checkouts)
	assert.Equal(t, int64(5), *out.Overdue)
	assert.Equal(t, 37.5, *out.TotalFines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_AddMaterial(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_add_material(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, @o_material_id)")).
		WithArgs("Dune", nil, "Book", "9780441013593", int64(1965), nil, "English", nil, nil, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT CAST(@o_material_id AS SIGNED) AS material_id")).
		WillReturnRows(sqlmock.NewRows([]string{"material_id"}).AddRow(int64(40)))

	isbn := "9780441013593"
	out, err := repo.AddMaterial(context.Background(), AddMaterialParams{
		Title:           "Dune",
		MaterialType:    "Book",
		ISBN:            &isbn,
		PublicationYear: 1965,
		Language:        "English",
		TotalCopies:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), *out.MaterialID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_AddCopy_DuplicateBarcode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_add_copy(?, ?, ?, ?, @o_copy_id)")).
		WithArgs(int64(40), "BC-1", int64(2), 19.99).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'BC-1' for key 'barcode'"})

	out, err := repo.AddCopy(context.Background(), AddCopyParams{MaterialID: 40, Barcode: "BC-1", BranchID: 2, AcquisitionPrice: 19.99})
	assert.Nil(t, out)
	var integrity *domain.IntegrityError
	assert.ErrorAs(t, err, &integrity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_DeleteAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_delete_material(?, ?)")).
		WithArgs(int64(40), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `materials` WHERE material_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"material_id", "title", "material_type"}).AddRow(int64(41), "Emma", "Book"))

	require.NoError(t, repo.DeleteMaterial(context.Background(), 40, 3))
	m, err := repo.GetMaterial(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, "Emma", m.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdminRepository_Functions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserAdminRepository(db, NewProcedures(nil, nil))

	mock.ExpectQuery(q("SELECT fn_has_permission(?, ?) AS value")).
		WithArgs(int64(7), "CIRC_CHECKOUT").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1))
	mock.ExpectQuery(q("SELECT fn_get_user_roles(?) AS value")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("ROLE_PATRON,ROLE_CIRCULATION_CLERK"))

	flag, err := repo.HasPermission(context.Background(), 7, "CIRC_CHECKOUT")
	require.NoError(t, err)
	assert.Equal(t, 1, *flag.Value)

	roles, err := repo.RoleList(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "ROLE_PATRON,ROLE_CIRCULATION_CLERK", *roles.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdminRepository_AssignRole(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserAdminRepository(db, NewProcedures(nil, nil))

	mock.ExpectExec(q("CALL sp_assign_role_to_user(?, ?, ?, @o_success, @o_message)")).
		WithArgs(int64(42), int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(q("SELECT CAST(@o_success AS SIGNED) AS success, @o_message AS message")).
		WillReturnRows(sqlmock.NewRows([]string{"success", "message"}).AddRow(0, "User already has this role"))

	out, err := repo.AssignRole(context.Background(), 42, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, *out.Success)
	assert.Equal(t, "User already has this role", *out.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}
