package portfolio

// Schema holds the portfolio tables. The partial unique index on
// portfolios(user_id) backs the one-sandbox-per-user invariant at the
// database level; the builder additionally runs inside a transaction so a
// concurrent first build degrades to returning the existing portfolio.
const Schema = `
CREATE TABLE IF NOT EXISTS portfolios (
    id INTEGER PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    is_sandbox INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_portfolios_one_sandbox
    ON portfolios(user_id) WHERE is_sandbox = 1;

CREATE TABLE IF NOT EXISTS holdings (
    id INTEGER PRIMARY KEY,
    portfolio_id INTEGER NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
    asset_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    quantity TEXT NOT NULL,
    average_cost TEXT NOT NULL,
    UNIQUE(portfolio_id, asset_id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY,
    portfolio_id INTEGER NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
    asset_id INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    transaction_type TEXT NOT NULL,
    quantity TEXT NOT NULL,
    price TEXT NOT NULL,
    fees TEXT NOT NULL DEFAULT '0',
    executed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_portfolio
    ON transactions(portfolio_id, executed_at DESC);

CREATE TABLE IF NOT EXISTS portfolio_history (
    id INTEGER PRIMARY KEY,
    portfolio_id INTEGER NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    total_value TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE(portfolio_id, date)
);
`
