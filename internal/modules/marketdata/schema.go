package marketdata

// Schema holds the assets table. Prices are stored as TEXT so the decimal
// values round-trip without binary float representation loss.
const Schema = `
CREATE TABLE IF NOT EXISTS assets (
    id INTEGER PRIMARY KEY,
    ticker TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    asset_type TEXT NOT NULL,
    currency TEXT NOT NULL DEFAULT 'CAD',
    sector TEXT NOT NULL DEFAULT '',
    geography TEXT NOT NULL DEFAULT '',
    current_price TEXT NOT NULL DEFAULT '0',
    previous_close TEXT NOT NULL DEFAULT '0',
    description TEXT NOT NULL DEFAULT ''
);
`
